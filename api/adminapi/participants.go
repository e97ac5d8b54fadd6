package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/storage/model"
)

func registerParticipants(r fiber.Router, store model.ParticipantsStore) {
	g := r.Group("/participants")

	g.Post(
		"/", func(c *fiber.Ctx) error {
			var req model.AddParticipant
			if err := bind(c, &req); err != nil {
				return apierror.Respond(c, err)
			}
			item, err := store.Create(req)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(item)
		},
	)

	g.Get(
		"/:participantID", func(c *fiber.Ctx) error {
			id, err := idParam(c, "participantID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			item, err := store.Get(id)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(item)
		},
	)
}
