package certhouse

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
)

// handleError is the fiber error handler for errors not handled by a route
func handleError(c *fiber.Ctx, err error) error {
	return apierror.Respond(c, err)
}
