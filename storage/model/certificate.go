package model

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is the artifact record of one enrollment. It is a placeholder
// while CreatedAt equals UpdatedAt and becomes published once a render has
// been saved onto it.
type Certificate struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EnrollmentID  uint       `gorm:"uniqueIndex" json:"enrollment_id"`
	TrainingID    uint       `gorm:"index" json:"training_id"`
	ParticipantID uint       `gorm:"index" json:"participant_id"`
	ImageRef      string     `json:"image_ref,omitempty"`
	LicenseNumber *string    `gorm:"uniqueIndex" json:"license_number,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Published reports whether the certificate has already been rendered.
func (c Certificate) Published() bool {
	return !c.CreatedAt.Equal(c.UpdatedAt)
}

// License returns the license number or the empty string for placeholders
func (c Certificate) License() string {
	if c.LicenseNumber == nil {
		return ""
	}
	return *c.LicenseNumber
}

// PublishedCertificate holds the values written onto a placeholder when it
// is published.
type PublishedCertificate struct {
	LicenseNumber string
	ImageRef      string
	ExpiresAt     time.Time
	PublishedAt   time.Time
}

// CertificatesStore abstracts persistence of certificates.
type CertificatesStore interface {
	// Provision creates the placeholder certificate for an enrollment. If one
	// already exists it is returned unchanged.
	Provision(enrollment Enrollment) (*Certificate, error)
	Get(id uint) (*Certificate, error)
	ByLicense(license string) (*Certificate, error)
	// ListPublished returns the published certificates of a participant.
	ListPublished(participantID uint) ([]Certificate, error)
	// MarkPublished writes the published values onto the certificate only if
	// it is still a placeholder. It reports whether the write happened.
	MarkPublished(id uint, published PublishedCertificate) (bool, error)
}
