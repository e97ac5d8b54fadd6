// Package auth issues and verifies the bearer tokens of the http api
package auth

import (
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"

	"github.com/certhouse/certhouse/storage/model"
)

const (
	claimRole     = "role"
	claimUsername = "preferred_username"

	minSecretLen = 32
)

// Identity is the authenticated caller of a request
type Identity struct {
	ID       uint
	Username string
	Role     model.Role
}

// IsAdmin reports whether the caller has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// Tokens issues and verifies HS256 signed JWTs
type Tokens struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokens creates Tokens signing with secret
func NewTokens(secret []byte, issuer string, lifetime time.Duration) (*Tokens, error) {
	if len(secret) < minSecretLen {
		return nil, errors.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &Tokens{
		secret:   secret,
		issuer:   issuer,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Lifetime returns how long issued tokens are valid
func (t *Tokens) Lifetime() time.Duration {
	return t.lifetime
}

// Issue returns a signed token for the user
func (t *Tokens) Issue(u model.User) (string, error) {
	now := t.now()
	tok, err := jwt.NewBuilder().
		Issuer(t.issuer).
		Subject(strconv.FormatUint(uint64(u.ID), 10)).
		IssuedAt(now).
		Expiration(now.Add(t.lifetime)).
		Claim(claimRole, string(u.Role)).
		Claim(claimUsername, u.Username).
		Build()
	if err != nil {
		return "", errors.Wrap(err, "could not build token")
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), t.secret))
	if err != nil {
		return "", errors.Wrap(err, "could not sign token")
	}
	return string(signed), nil
}

// Verify checks the token signature and validity and returns the identity it
// was issued for
func (t *Tokens) Verify(token string) (Identity, error) {
	var id Identity
	tok, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.HS256(), t.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(t.issuer),
		jwt.WithClock(jwt.ClockFunc(t.now)),
	)
	if err != nil {
		return id, errors.Wrap(err, "invalid token")
	}
	sub, ok := tok.Subject()
	if !ok {
		return id, errors.New("token has no subject")
	}
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return id, errors.Wrap(err, "invalid token subject")
	}
	var role string
	if err = tok.Get(claimRole, &role); err != nil {
		return id, errors.Wrap(err, "token has no role")
	}
	if id.Role, err = model.ParseRole(role); err != nil {
		return id, err
	}
	_ = tok.Get(claimUsername, &id.Username)
	id.ID = uint(uid)
	return id, nil
}
