package model

import (
	"gorm.io/gorm"
)

// Enrollment event types
const (
	EventTypeEnrolled      = "enrolled"
	EventTypeStatusChanged = "status_changed"
	EventTypeDeleted       = "deleted"
	EventTypeRestored      = "restored"
)

// EnrollmentEvent stores an event related to an enrollment.
type EnrollmentEvent struct {
	gorm.Model
	EnrollmentID uint    `gorm:"index" json:"enrollment_id"`
	Timestamp    int64   `gorm:"index" json:"timestamp"`
	Type         string  `gorm:"index" json:"type"`
	FromStatus   *string `json:"from_status,omitempty"`
	ToStatus     *string `json:"to_status,omitempty"`
	Actor        *string `json:"actor,omitempty"`
}
