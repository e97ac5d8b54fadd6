package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/storage/model"
)

type setCategoriesReq struct {
	CategoryCodes []string `json:"category_codes" validate:"required,min=1,dive,required"`
}

func registerTrainings(r fiber.Router, store model.TrainingsStore) {
	g := r.Group("/trainings")

	g.Get(
		"/", func(c *fiber.Ctx) error {
			items, err := store.List()
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(items)
		},
	)

	g.Post(
		"/", func(c *fiber.Ctx) error {
			var req model.AddTraining
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
		"/:trainingID", func(c *fiber.Ctx) error {
			id, err := idParam(c, "trainingID")
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
		"/:trainingID/categories", func(c *fiber.Ctx) error {
			id, err := idParam(c, "trainingID")
			if err != nil {
				return apierror.Respond(c, err)
			}
			var req setCategoriesReq
			if err = bind(c, &req); err != nil {
				return apierror.Respond(c, err)
			}
			item, err := store.SetCategories(id, req.CategoryCodes)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(item)
		},
	)

	g.Delete(
		"/:trainingID", func(c *fiber.Ctx) error {
			id, err := idParam(c, "trainingID")
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
		"/:trainingID/restore", func(c *fiber.Ctx) error {
			id, err := idParam(c, "trainingID")
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
