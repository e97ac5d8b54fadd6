package auth

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/storage/model"
)

const identityKey = "certhouse_identity"

// Middleware requires a valid bearer token and attaches the caller's
// Identity to the request
func Middleware(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.Unauthorized("missing bearer token"))
		}
		id, err := tokens.Verify(strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.Unauthorized(err.Error()))
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// FromCtx returns the Identity attached by Middleware
func FromCtx(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	return id, ok
}

// RequireRole only lets callers with one of the roles through. It must be
// mounted after Middleware.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := FromCtx(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(apierror.Unauthorized("not authenticated"))
		}
		if !slices.Contains(roles, id.Role) {
			return c.Status(fiber.StatusForbidden).JSON(apierror.Forbidden("role '" + string(id.Role) + "' is not allowed"))
		}
		return c.Next()
	}
}
