// Package issuance publishes certificates for the completed enrollments of a
// training.
package issuance

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/artifacts"
	"github.com/certhouse/certhouse/certificate"
	"github.com/certhouse/certhouse/storage"
	"github.com/certhouse/certhouse/storage/model"
)

// Renderer renders a certificate image
type Renderer interface {
	Render(in certificate.Input) ([]byte, error)
}

// LicenseGenerator mints license numbers
type LicenseGenerator interface {
	Generate(trainingID, participantID uint, ts time.Time) string
}

// Assets resolves the encoded template and signature images of a training.
// A nil slice without error means the asset is not available.
type Assets interface {
	Template(t model.Training) ([]byte, error)
	Signature(t model.Training) ([]byte, error)
}

// Publisher renders and publishes certificate placeholders
type Publisher struct {
	Enrollments  model.EnrollmentsStore
	Certificates model.CertificatesStore
	KV           model.KeyValueStore
	Renderer     Renderer
	Licenses     LicenseGenerator
	Artifacts    artifacts.Store
	Assets       Assets
	// Now defaults to time.Now
	Now func() time.Time
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// eligibility returns the skip reason for publishing the enrollment, or the
// empty string if it can be published.
func eligibility(e *model.Enrollment) string {
	switch {
	case e == nil:
		return ReasonNotEnrolled
	case !e.Status.Publishable():
		return StatusReason(e.Status)
	case e.Certificate == nil:
		return ReasonNoCertificate
	case e.Certificate.Published():
		return ReasonAlreadyPublished
	}
	return ""
}

// Publish publishes the certificates of the requested participants one after
// another. Only an invalid request or a training without enrollments fails
// the whole call; every other problem is reported as a skip for that
// participant.
func (p *Publisher) Publish(ctx context.Context, req BatchRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkTraining(p.Enrollments, req.TrainingID); err != nil {
		return nil, err
	}
	settings, err := storage.GetCertificateSettings(p.KV)
	if err != nil {
		return nil, err
	}
	res := &Result{Outcomes: make([]Outcome, 0, len(req.ParticipantIDs))}
	for _, pid := range req.ParticipantIDs {
		logger := log.WithFields(
			log.Fields{
				"training_id":    req.TrainingID,
				"participant_id": pid,
			},
		)
		cert, reason := p.publishOne(ctx, logger, req.TrainingID, pid, settings)
		if cert == nil {
			logger.WithField("reason", reason).Debug("certificate not published")
			res.skipped(pid, reason)
			continue
		}
		logger.WithField("license", cert.License()).Info("certificate published")
		res.updated(pid, cert)
	}
	return res, nil
}

func checkTraining(enrollments model.EnrollmentsStore, trainingID uint) error {
	count, err := enrollments.CountByTraining(trainingID)
	if err != nil {
		return err
	}
	if count == 0 {
		return model.NotFoundErrorFmt("training %d has no enrollments", trainingID)
	}
	return nil
}

func (p *Publisher) publishOne(
	ctx context.Context, logger log.FieldLogger, trainingID, participantID uint,
	settings model.CertificateSettings,
) (*model.Certificate, string) {
	enrollment, err := p.Enrollments.ForParticipant(trainingID, participantID)
	if err != nil {
		return nil, err.Error()
	}
	if reason := eligibility(enrollment); reason != "" {
		return nil, reason
	}
	placeholder := enrollment.Certificate

	now := p.now()
	license := p.Licenses.Generate(trainingID, participantID, now)
	in := p.renderInput(logger, enrollment, settings)
	in.LicenseNumber = license
	img, err := p.Renderer.Render(in)
	if err != nil {
		logger.WithError(err).Error("could not render certificate")
		return nil, err.Error()
	}

	name := artifacts.ImageName(license)
	ref, err := p.Artifacts.Write(ctx, name, img)
	if err != nil {
		logger.WithError(err).Error("could not store certificate image")
		return nil, err.Error()
	}
	won, err := p.Certificates.MarkPublished(
		placeholder.ID, model.PublishedCertificate{
			LicenseNumber: license,
			ImageRef:      ref,
			ExpiresAt:     placeholder.CreatedAt.AddDate(settings.ValidityYears, 0, 0),
			PublishedAt:   now,
		},
	)
	if err != nil || !won {
		p.discard(ctx, logger, name)
		if err != nil {
			logger.WithError(err).Error("could not save certificate")
			return nil, err.Error()
		}
		return nil, ReasonAlreadyPublished
	}
	published, err := p.Certificates.Get(placeholder.ID)
	if err != nil {
		// the certificate is published, report what was written
		logger.WithError(err).Warn("could not reload published certificate")
		published = placeholder
		published.LicenseNumber = &license
		published.ImageRef = ref
	}
	return published, ""
}

// discard removes an image that did not make it onto a certificate
func (p *Publisher) discard(ctx context.Context, logger log.FieldLogger, name string) {
	if err := p.Artifacts.Delete(ctx, name); err != nil {
		logger.WithError(err).WithField("artifact", name).Warn("could not remove orphaned certificate image")
	}
}

func (p *Publisher) renderInput(
	logger log.FieldLogger, e *model.Enrollment, settings model.CertificateSettings,
) certificate.Input {
	in := certificate.Input{
		TrainingID:     e.TrainingID,
		CertifyingBody: settings.CertifyingBody,
		RoleLabel:      settings.RoleLabel,
	}
	if pt := e.Participant; pt != nil {
		in.FirstName = pt.FirstName
		in.LastName = pt.LastName
		in.Department = pt.Department
		in.Company = pt.Company
	}
	t := e.Training
	if t == nil {
		return in
	}
	in.TrainingName = t.Name
	in.StartsAt = t.StartsAt
	in.EndsAt = t.EndsAt
	in.Location = t.Location
	in.Variant = t.TemplateVariant
	in.SignatoryName = t.SignatoryName
	if t.SignatoryTitle != "" {
		in.RoleLabel = t.SignatoryTitle
	}
	if p.Assets == nil {
		return in
	}
	var err error
	if in.Template, err = p.Assets.Template(*t); err != nil {
		logger.WithError(err).Warn("could not load certificate template, using blank canvas")
	}
	if in.Signature, err = p.Assets.Signature(*t); err != nil {
		logger.WithError(err).Warn("could not load signature, omitting it")
	}
	return in
}
