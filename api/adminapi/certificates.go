package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/issuance"
	"github.com/certhouse/certhouse/storage"
	"github.com/certhouse/certhouse/storage/model"
)

type batchReq struct {
	ParticipantIDs []uint `json:"participant_ids"`
}

// batchRequest reads the participant ids of a batch; the training comes from
// the path. Validation happens in the issuance package.
func batchRequest(c *fiber.Ctx) (issuance.BatchRequest, error) {
	tid, err := idParam(c, "trainingID")
	if err != nil {
		return issuance.BatchRequest{}, err
	}
	var req batchReq
	if err = c.BodyParser(&req); err != nil {
		return issuance.BatchRequest{}, model.ValidationErrorFmt("invalid body: %s", err.Error())
	}
	return issuance.BatchRequest{
		TrainingID:     tid,
		ParticipantIDs: req.ParticipantIDs,
	}, nil
}

func registerCertificates(r fiber.Router, publisher Publisher, provisioner Provisioner) {
	g := r.Group("/trainings/:trainingID/certificates")

	g.Post(
		"/provision", func(c *fiber.Ctx) error {
			req, err := batchRequest(c)
			if err != nil {
				return apierror.Respond(c, err)
			}
			res, err := provisioner.Provision(req)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(res)
		},
	)

	g.Post(
		"/publish", func(c *fiber.Ctx) error {
			req, err := batchRequest(c)
			if err != nil {
				return apierror.Respond(c, err)
			}
			res, err := publisher.Publish(c.UserContext(), req)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(res)
		},
	)
}

func registerCertificateSettings(r fiber.Router, kv model.KeyValueStore) {
	g := r.Group("/settings/certificates")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			settings, err := storage.GetCertificateSettings(kv)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(settings)
		},
	)

	g.Put(
		"/", func(c *fiber.Ctx) error {
			var req model.CertificateSettings
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(apierror.InvalidRequest("invalid body"))
			}
			if err := storage.SetCertificateSettings(kv, req); err != nil {
				return apierror.Respond(c, err)
			}
			settings, err := storage.GetCertificateSettings(kv)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(settings)
		},
	)
}
