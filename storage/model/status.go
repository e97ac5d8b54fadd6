package model

import (
	"fmt"
)

// EnrollmentStatus is the lifecycle state of a participant within a training.
// The zero value is StatusNotStarted, so freshly created enrollments start
// there.
type EnrollmentStatus int

// Constants for EnrollmentStatus
const (
	StatusNotStarted EnrollmentStatus = iota
	StatusInProgress
	StatusCompleted
	StatusIncomplete
)

// AllEnrollmentStatuses lists every defined status in lifecycle order.
var AllEnrollmentStatuses = []EnrollmentStatus{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusIncomplete,
}

// String returns the canonical string representation for the status.
func (s EnrollmentStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusInProgress:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	case StatusIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Valid reports whether the status is one of the defined constants.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusIncomplete:
		return true
	default:
		return false
	}
}

// Active reports whether an enrollment in this status blocks a new
// enrollment for the same training and participant.
func (s EnrollmentStatus) Active() bool {
	return s == StatusNotStarted || s == StatusInProgress
}

// Publishable reports whether a certificate may be published for an
// enrollment in this status.
func (s EnrollmentStatus) Publishable() bool {
	return s == StatusCompleted
}

// MarshalJSON encodes the status as a JSON string.
func (s EnrollmentStatus) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

// UnmarshalJSON decodes the status from a JSON string.
func (s *EnrollmentStatus) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("status must be a JSON string")
	}
	ps, err := ParseEnrollmentStatus(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = ps
	return nil
}

// ParseEnrollmentStatus converts a string to an EnrollmentStatus, returning
// an error for invalid values.
func ParseEnrollmentStatus(v string) (EnrollmentStatus, error) {
	switch v {
	case "not-started":
		return StatusNotStarted, nil
	case "in-progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	case "incomplete":
		return StatusIncomplete, nil
	}
	return 0, fmt.Errorf("invalid status: %s", v)
}
