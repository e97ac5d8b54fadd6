package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment links one participant to one training and carries the
// participant's lifecycle status in it.
type Enrollment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TrainingID    uint             `gorm:"index:idx_enrollment_pair" json:"training_id"`
	Training      *Training        `json:"training,omitempty"`
	ParticipantID uint             `gorm:"index:idx_enrollment_pair" json:"participant_id"`
	Participant   *Participant     `json:"participant,omitempty"`
	CoachID       *uint            `json:"coach_id,omitempty"`
	Status        EnrollmentStatus `gorm:"index" json:"status"`
	Certificate   *Certificate     `gorm:"foreignKey:EnrollmentID" json:"certificate,omitempty"`
}

// AddEnrollment is the payload for registering a participant into a training
type AddEnrollment struct {
	ParticipantID uint  `json:"participant_id" validate:"required"`
	CoachID       *uint `json:"coach_id"`
}

// EnrollmentsStore abstracts persistence of enrollments.
type EnrollmentsStore interface {
	// Create registers the participant into the training. It returns a
	// ConflictError if the pair already has an active enrollment.
	Create(trainingID uint, add AddEnrollment) (*Enrollment, error)
	// Get returns the enrollment with participant, training and certificate
	// loaded, or a NotFoundError.
	Get(id uint) (*Enrollment, error)
	// ForParticipant returns the most recent enrollment of the participant
	// in the training with relations loaded, or nil if there is none.
	ForParticipant(trainingID, participantID uint) (*Enrollment, error)
	ListByTraining(trainingID uint) ([]Enrollment, error)
	CountByTraining(trainingID uint) (int64, error)
	// UpdateStatus reassigns the status. When the new status is completed a
	// placeholder certificate is provisioned if none exists yet.
	UpdateStatus(id uint, status EnrollmentStatus, actor string) (*Enrollment, error)
	History(id uint) ([]EnrollmentEvent, error)
	Delete(id uint) error
	Restore(id uint) error
}

// CheckEnrollable returns a ConflictError if one of the existing enrollments
// of a (training, participant) pair is still active. Enrollments that are
// completed or incomplete do not block a new one.
func CheckEnrollable(existing []Enrollment) error {
	for _, e := range existing {
		if e.Status.Active() {
			return ConflictErrorFmt(
				"participant %d already has an active enrollment in training %d (status: %s)",
				e.ParticipantID, e.TrainingID, e.Status,
			)
		}
	}
	return nil
}

// CheckReassign validates an admin status change. Any defined status may be
// assigned regardless of the current one.
func CheckReassign(_, to EnrollmentStatus) error {
	if !to.Valid() {
		return ValidationErrorFmt("invalid status: %d", int(to))
	}
	return nil
}
