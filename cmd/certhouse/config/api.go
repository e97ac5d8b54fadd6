package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/duration"

	"github.com/certhouse/certhouse/storage"
)

// apiConf holds API-related configuration
type apiConf struct {
	// JWTSecret signs the bearer tokens; may be set via CERTHOUSE_JWT_SECRET
	JWTSecret      string                  `yaml:"jwt_secret"`
	Issuer         string                  `yaml:"issuer"`
	TokenLifetime  duration.DurationOption `yaml:"token_lifetime"`
	Argon2idParams storage.Argon2idParams  `yaml:"password_hashing"`
}

func (c *apiConf) validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.Errorf("error in api conf: jwt_secret must be at least 32 characters (or set %s)", EnvJWTSecret)
	}
	if c.TokenLifetime.Duration() <= 0 {
		c.TokenLifetime = defaultAPIConf.TokenLifetime
	}
	return nil
}

var defaultAPIConf = apiConf{
	Issuer:        "certhouse",
	TokenLifetime: duration.DurationOption(8 * time.Hour),
	Argon2idParams: storage.Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      64,
		SaltLen:     32,
	},
}
