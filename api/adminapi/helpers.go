package adminapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/certhouse/certhouse/storage/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bind parses the request body into req and validates it
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return model.ValidationErrorFmt("invalid body: %s", err.Error())
	}
	if err := validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fe.Field() + " failed on '" + fe.Tag() + "'"
			}
			return model.ValidationError(strings.Join(msgs, "; "))
		}
		return model.ValidationError(err.Error())
	}
	return nil
}

// idParam returns the numeric path parameter name
func idParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, model.ValidationErrorFmt("invalid %s '%s'", name, raw)
	}
	return uint(id), nil
}
