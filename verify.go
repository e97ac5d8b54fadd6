package certhouse

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/certificate"
	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/internal/cache"
	"github.com/certhouse/certhouse/storage/model"
)

const verificationCachePeriod = 5 * time.Minute

// Verification is the public view of a published certificate
type Verification struct {
	LicenseNumber string    `json:"license_number" msgpack:"license_number"`
	Holder        string    `json:"holder" msgpack:"holder"`
	Training      string    `json:"training" msgpack:"training"`
	IssuedAt      time.Time `json:"issued_at" msgpack:"issued_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" msgpack:"expires_at"`
	Valid         bool      `json:"valid" msgpack:"-"`
}

func registerVerification(r fiber.Router, storages model.Backends, c *cache.Cache) {
	r.Get(
		"/certificates/verify/:license", func(ctx *fiber.Ctx) error {
			license := strings.ToUpper(strings.TrimSpace(ctx.Params("license")))
			if !certificate.LicensePattern.MatchString(license) {
				return ctx.Status(fiber.StatusBadRequest).JSON(apierror.InvalidRequest("malformed license number"))
			}
			key := cache.Key(cache.KeyLicenseVerification, license)
			var v Verification
			found, err := c.Get(ctx.UserContext(), key, &v)
			if err != nil {
				log.WithError(err).Warn("license verification cache lookup failed")
			}
			if !found {
				v, err = verification(storages, license)
				if err != nil {
					return apierror.Respond(ctx, err)
				}
				if err = c.Set(ctx.UserContext(), key, v, verificationCachePeriod); err != nil {
					log.WithError(err).Warn("could not cache license verification")
				}
			}
			v.Valid = v.ExpiresAt == nil || time.Now().Before(*v.ExpiresAt)
			return ctx.JSON(v)
		},
	)
}

func verification(storages model.Backends, license string) (Verification, error) {
	cert, err := storages.Certificates.ByLicense(license)
	if err != nil {
		return Verification{}, err
	}
	if !cert.Published() {
		return Verification{}, model.NotFoundErrorFmt("certificate not found: %s", license)
	}
	v := Verification{
		LicenseNumber: cert.License(),
		Holder:        certificate.FallbackName,
		Training:      certificate.TrainingName("", cert.TrainingID),
		IssuedAt:      cert.UpdatedAt,
	}
	v.ExpiresAt = cert.ExpiresAt
	if p, err := storages.Participants.Get(cert.ParticipantID); err == nil {
		v.Holder = certificate.FormatName(p.FirstName, p.LastName)
	}
	if t, err := storages.Trainings.Get(cert.TrainingID); err == nil {
		v.Training = certificate.TrainingName(t.Name, t.ID)
	}
	return v, nil
}
