package model

import (
	"time"

	"gorm.io/gorm"
)

// Participant holds the identity printed on certificates.
type Participant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID links the participant to its optional login account.
	UserID     *uint  `gorm:"uniqueIndex" json:"user_id,omitempty"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `gorm:"index" json:"email"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	Department string `json:"department,omitempty"`
}

// AddParticipant is the payload for creating a Participant
type AddParticipant struct {
	UserID     *uint  `json:"user_id"`
	FirstName  string `json:"first_name" validate:"required_without=LastName"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Department string `json:"department"`
}

// ParticipantsStore abstracts persistence of participants.
type ParticipantsStore interface {
	Create(add AddParticipant) (*Participant, error)
	Get(id uint) (*Participant, error)
	GetByUser(userID uint) (*Participant, error)
}
