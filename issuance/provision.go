package issuance

import (
	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/storage/model"
)

// Provisioner creates certificate placeholders for completed enrollments
// that do not have one, e.g. enrollments completed before certificates were
// introduced.
type Provisioner struct {
	Enrollments  model.EnrollmentsStore
	Certificates model.CertificatesStore
}

// Provision creates the missing placeholders of the requested participants
func (p *Provisioner) Provision(req BatchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkTraining(p.Enrollments, req.TrainingID); err != nil {
		return nil, err
	}
	res := &Result{Outcomes: make([]Outcome, 0, len(req.ParticipantIDs))}
	for _, pid := range req.ParticipantIDs {
		e, err := p.Enrollments.ForParticipant(req.TrainingID, pid)
		switch {
		case err != nil:
			res.skipped(pid, err.Error())
			continue
		case e == nil:
			res.skipped(pid, ReasonNotEnrolled)
			continue
		case !e.Status.Publishable():
			res.skipped(pid, StatusReason(e.Status))
			continue
		case e.Certificate != nil:
			res.skipped(pid, ReasonAlreadyExists)
			continue
		}
		c, err := p.Certificates.Provision(*e)
		if err != nil {
			log.WithError(err).WithField("enrollment_id", e.ID).Error("could not provision certificate")
			res.skipped(pid, err.Error())
			continue
		}
		res.updated(pid, c)
	}
	return res, nil
}
