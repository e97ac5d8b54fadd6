package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/storage/model"
)

type updateStatusReq struct {
	Status *model.EnrollmentStatus `json:"status" validate:"required"`
}

func registerEnrollments(r fiber.Router, store model.EnrollmentsStore) {
	r.Get(
		"/trainings/:trainingID/enrollments", func(c *fiber.Ctx) error {
			tid, err := idParam(c, "trainingID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			items, err := store.ListByTraining(tid)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(items)
		},
	)

	r.Post(
		"/trainings/:trainingID/enrollments", func(c *fiber.Ctx) error {
			tid, err := idParam(c, "trainingID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			var req model.AddEnrollment
			if err = bind(c, &req); err != nil {
				return apierror.Respond(c, err)
			}
			item, err := store.Create(tid, req)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(item)
		},
	)

	g := r.Group("/enrollments")

	g.Get(
		"/:enrollmentID", func(c *fiber.Ctx) error {
			id, err := idParam(c, "enrollmentID")
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

	g.Put(
		"/:enrollmentID/status", func(c *fiber.Ctx) error {
			id, err := idParam(c, "enrollmentID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			var req updateStatusReq
			if err = bind(c, &req); err != nil {
				return apierror.Respond(c, err)
			}
			caller, _ := auth.FromCtx(c)
			item, err := store.UpdateStatus(id, *req.Status, caller.Username)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(item)
		},
	)

	g.Get(
		"/:enrollmentID/history", func(c *fiber.Ctx) error {
			id, err := idParam(c, "enrollmentID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			events, err := store.History(id)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(events)
		},
	)

	g.Delete(
		"/:enrollmentID", func(c *fiber.Ctx) error {
			id, err := idParam(c, "enrollmentID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			if err = store.Delete(id); err != nil {
				return apierror.Respond(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		},
	)

	g.Post(
		"/:enrollmentID/restore", func(c *fiber.Ctx) error {
			id, err := idParam(c, "enrollmentID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			if err = store.Restore(id); err != nil {
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
