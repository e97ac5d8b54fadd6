// Package apierror holds the JSON error bodies returned by all http endpoints
package apierror

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/storage/model"
)

// Error codes
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeServerError    = "server_error"
)

// Error is the body of an error response
type Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func newError(code, description string) Error {
	return Error{
		Error:            code,
		ErrorDescription: description,
	}
}

// InvalidRequest returns an invalid_request Error
func InvalidRequest(description string) Error {
	return newError(CodeInvalidRequest, description)
}

// NotFound returns a not_found Error
func NotFound(description string) Error {
	return newError(CodeNotFound, description)
}

// Conflict returns a conflict Error
func Conflict(description string) Error {
	return newError(CodeConflict, description)
}

// Unauthorized returns an unauthorized Error
func Unauthorized(description string) Error {
	return newError(CodeUnauthorized, description)
}

// Forbidden returns a forbidden Error
func Forbidden(description string) Error {
	return newError(CodeForbidden, description)
}

// ServerError returns a server_error Error
func ServerError(description string) Error {
	return newError(CodeServerError, description)
}

// Respond writes the error response matching err. Typed storage errors map
// to their status code, everything else is a 500.
func Respond(c *fiber.Ctx, err error) error {
	var (
		notFound   model.NotFoundError
		exists     model.AlreadyExistsError
		conflict   model.ConflictError
		validation model.ValidationError
		fiberErr   *fiber.Error
	)
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(InvalidRequest(validation.Error()))
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(NotFound(notFound.Error()))
	case errors.As(err, &exists):
		return c.Status(fiber.StatusConflict).JSON(Conflict(exists.Error()))
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(Conflict(conflict.Error()))
	case errors.As(err, &fiberErr):
		code := CodeServerError
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusUnauthorized:
			code = CodeUnauthorized
		case fiber.StatusForbidden:
			code = CodeForbidden
		default:
			if fiberErr.Code < fiber.StatusInternalServerError {
				code = CodeInvalidRequest
			}
		}
		return c.Status(fiberErr.Code).JSON(newError(code, fiberErr.Message))
	}
	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(ServerError(err.Error()))
}
