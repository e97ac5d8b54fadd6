package issuance

import (
	"encoding/json"

	"github.com/certhouse/certhouse/storage/model"
)

// Skip reasons
const (
	ReasonNotEnrolled      = "not enrolled in this training"
	ReasonNoCertificate    = "certificate does not exist"
	ReasonAlreadyPublished = "certificate already published"
	ReasonAlreadyExists    = "certificate already exists"
)

// StatusReason returns the skip reason for an enrollment whose status does
// not permit the operation
func StatusReason(s model.EnrollmentStatus) string {
	return "status: " + s.String()
}

// Outcome is the result for one participant of a batch; exactly one of
// Certificate and Reason is set.
type Outcome struct {
	ParticipantID uint
	Certificate   *model.Certificate
	Reason        string
}

// OK reports whether the participant was updated
func (o Outcome) OK() bool {
	return o.Certificate != nil
}

// Skip is a participant that was not updated
type Skip struct {
	ParticipantID uint   `json:"participant_id"`
	Reason        string `json:"reason"`
}

// Result holds one Outcome per requested participant in request order
type Result struct {
	Outcomes []Outcome
}

func (r *Result) updated(pid uint, c *model.Certificate) {
	r.Outcomes = append(
		r.Outcomes, Outcome{
			ParticipantID: pid,
			Certificate:   c,
		},
	)
}

func (r *Result) skipped(pid uint, reason string) {
	r.Outcomes = append(
		r.Outcomes, Outcome{
			ParticipantID: pid,
			Reason:        reason,
		},
	)
}

// Updated returns the certificates of all updated participants in request
// order
func (r Result) Updated() []model.Certificate {
	out := make([]model.Certificate, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, *o.Certificate)
		}
	}
	return out
}

// Skipped returns all skipped participants in request order
func (r Result) Skipped() []Skip {
	out := make([]Skip, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, Skip{ParticipantID: o.ParticipantID, Reason: o.Reason})
		}
	}
	return out
}

// MarshalJSON implements the json.Marshaler interface
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		struct {
			Updated []model.Certificate `json:"updated"`
			Skipped []Skip              `json:"skipped"`
		}{
			Updated: r.Updated(),
			Skipped: r.Skipped(),
		},
	)
}
