package storage

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const argon2idVersion = "v=19"

var b64 = base64.RawStdEncoding

func defaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	}
}

// passwordHash is an argon2id hash together with the parameters it was
// derived with. Its string form is the PHC format
// $argon2id$v=19$m=<kib>,t=<time>,p=<threads>$<salt>$<key>.
type passwordHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func newPasswordHash(password string, params Argon2idParams) (passwordHash, error) {
	if params.Time == 0 {
		params = defaultArgon2idParams()
	}
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return passwordHash{}, errors.Wrap(err, "could not generate salt")
	}
	return passwordHash{
		params: params,
		salt:   salt,
		key:    derive(password, salt, params.Time, params.MemoryKiB, params.Parallelism, params.KeyLen),
	}, nil
}

func derive(password string, salt []byte, t, m uint32, p uint8, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), salt, t, m, p, keyLen)
}

func (h passwordHash) String() string {
	return fmt.Sprintf(
		"$argon2id$%s$m=%d,t=%d,p=%d$%s$%s", argon2idVersion,
		h.params.MemoryKiB, h.params.Time, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key),
	)
}

func (h passwordHash) matches(password string) bool {
	p := h.params
	candidate := derive(password, h.salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(candidate, h.key) == 1
}

// outdated reports whether the hash was derived with other parameters than p
func (h passwordHash) outdated(p Argon2idParams) bool {
	return h.params != p
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	var h passwordHash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return h, errors.New("unsupported password hash format")
	}
	if parts[2] != argon2idVersion {
		return h, errors.Errorf("unsupported argon2 version '%s'", parts[2])
	}
	var threads uint32
	if _, err := fmt.Sscanf(
		parts[3], "m=%d,t=%d,p=%d", &h.params.MemoryKiB, &h.params.Time, &threads,
	); err != nil {
		return h, errors.Wrap(err, "invalid argon2id parameters")
	}
	if threads == 0 || threads > 255 {
		return h, errors.Errorf("invalid argon2id parallelism %d", threads)
	}
	h.params.Parallelism = uint8(threads)
	var err error
	if h.salt, err = b64.DecodeString(parts[4]); err != nil {
		return h, errors.Wrap(err, "invalid argon2id salt")
	}
	if h.key, err = b64.DecodeString(parts[5]); err != nil {
		return h, errors.Wrap(err, "invalid argon2id key")
	}
	h.params.SaltLen = uint32(len(h.salt))
	h.params.KeyLen = uint32(len(h.key))
	return h, nil
}
