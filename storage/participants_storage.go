package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/certhouse/certhouse/storage/model"
)

// ParticipantsStorage provides access to Participant records
type ParticipantsStorage struct {
	db *gorm.DB
}

// Create creates a participant. A participant can be linked to at most one
// user account.
func (s *ParticipantsStorage) Create(add model.AddParticipant) (*model.Participant, error) {
	item := &model.Participant{
		UserID:     add.UserID,
		FirstName:  strings.TrimSpace(add.FirstName),
		LastName:   strings.TrimSpace(add.LastName),
		Email:      strings.TrimSpace(add.Email),
		Phone:      add.Phone,
		Company:    add.Company,
		Department: add.Department,
	}
	if err := s.db.Create(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsError("user is already linked to a participant")
		}
		return nil, errors.Wrap(err, "participants: create failed")
	}
	return item, nil
}

// Get returns a participant by id
func (s *ParticipantsStorage) Get(id uint) (*model.Participant, error) {
	var item model.Participant
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("participant not found: %d", id)
		}
		return nil, errors.Wrap(err, "participants: get failed")
	}
	return &item, nil
}

// GetByUser returns the participant linked to a user account
func (s *ParticipantsStorage) GetByUser(userID uint) (*model.Participant, error) {
	var item model.Participant
	if err := s.db.Where("user_id = ?", userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("no participant for user %d", userID)
		}
		return nil, errors.Wrap(err, "participants: get by user failed")
	}
	return &item, nil
}
