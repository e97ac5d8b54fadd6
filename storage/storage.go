package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/certhouse/certhouse/storage/model"
)

// Storage is a GORM-based storage implementation
type Storage struct {
	db         *gorm.DB
	userParams Argon2idParams
}

var models = []any{
	&model.Category{},
	&model.Training{},
	&model.TrainingCategory{},
	&model.Participant{},
	&model.Enrollment{},
	&model.EnrollmentCategory{},
	&model.EnrollmentEvent{},
	&model.Certificate{},
	&model.KeyValue{},
	&model.User{},
}

// NewStorage creates a new GORM-based storage
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate the schemas
	if err = db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Fill user hash params with defaults if zero values
	params := config.UsersHash
	if params.Time == 0 {
		params = defaultArgon2idParams()
	}

	return &Storage{
		db:         db,
		userParams: params,
	}, nil
}

// DB returns the underlying gorm.DB
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// TrainingsStorage returns a TrainingsStorage
func (s *Storage) TrainingsStorage() *TrainingsStorage {
	return &TrainingsStorage{db: s.db}
}

// ParticipantsStorage returns a ParticipantsStorage
func (s *Storage) ParticipantsStorage() *ParticipantsStorage {
	return &ParticipantsStorage{db: s.db}
}

// EnrollmentsStorage returns an EnrollmentsStorage
func (s *Storage) EnrollmentsStorage() *EnrollmentsStorage {
	return &EnrollmentsStorage{db: s.db}
}

// CertificatesStorage returns a CertificatesStorage
func (s *Storage) CertificatesStorage() *CertificatesStorage {
	return &CertificatesStorage{db: s.db}
}

// Users storage is implemented in users_storage.go
