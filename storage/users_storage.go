package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/certhouse/certhouse/storage/model"
)

// UsersStorage returns a UsersStorage
func (s *Storage) UsersStorage() *UsersStorage {
	return &UsersStorage{
		db:     s.db,
		params: s.userParams,
	}
}

// UsersStorage keeps login accounts. Password hashes never leave it.
type UsersStorage struct {
	db     *gorm.DB
	params Argon2idParams
}

// Count returns the number of accounts
func (s *UsersStorage) Count() (int64, error) {
	var n int64
	err := s.db.Model(&model.User{}).Count(&n).Error
	return n, errors.Wrap(err, "users: count failed")
}

func (s *UsersStorage) byUsername(username string) (*model.User, error) {
	var u model.User
	err := s.db.Where("username = ?", username).First(&u).Error
	switch {
	case err == nil:
		return &u, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.NotFoundErrorFmt("user not found: %s", username)
	default:
		return nil, errors.Wrap(err, "users: get failed")
	}
}

// Get returns the account with the given username
func (s *UsersStorage) Get(username string) (*model.User, error) {
	u, err := s.byUsername(username)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Create adds an account. An empty role means participant.
func (s *UsersStorage) Create(username, password, displayName string, role model.Role) (*model.User, error) {
	if username == "" || password == "" {
		return nil, model.ValidationError("username and password are required")
	}
	if role == "" {
		role = model.RoleParticipant
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		return nil, err
	}
	hash, err := newPasswordHash(password, s.params)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     username,
		PasswordHash: hash.String(),
		DisplayName:  displayName,
		Role:         role,
	}
	if err = s.db.Create(u).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("user already exists: %s", username)
		}
		return nil, errors.Wrap(err, "users: create failed")
	}
	u.PasswordHash = ""
	return u, nil
}

// Authenticate checks the credentials of an account. A hash derived with
// other parameters than the configured ones is replaced on success.
func (s *UsersStorage) Authenticate(username, password string) (*model.User, error) {
	u, err := s.byUsername(username)
	if err != nil {
		return nil, err
	}
	if u.Disabled {
		return nil, errors.New("user disabled")
	}
	hash, err := parsePasswordHash(u.PasswordHash)
	if err != nil || !hash.matches(password) {
		return nil, errors.New("invalid credentials")
	}
	if hash.outdated(s.params) {
		if rehashed, err := newPasswordHash(password, s.params); err == nil {
			// a failed upgrade keeps the old hash working
			_ = s.db.Model(&model.User{}).
				Where("id = ?", u.ID).
				Update("password_hash", rehashed.String()).Error
		}
	}
	u.PasswordHash = ""
	return u, nil
}
