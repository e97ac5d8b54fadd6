package apierror

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhouse/certhouse/storage/model"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", model.ValidationError("bad"), fiber.StatusBadRequest, CodeInvalidRequest},
		{"not found", errors.Wrap(model.NotFoundError("gone"), "ctx"), fiber.StatusNotFound, CodeNotFound},
		{"exists", model.AlreadyExistsError("dup"), fiber.StatusConflict, CodeConflict},
		{"conflict", model.ConflictError("active"), fiber.StatusConflict, CodeConflict},
		{"fiber", fiber.ErrUnprocessableEntity, fiber.StatusUnprocessableEntity, CodeInvalidRequest},
		{"other", errors.New("boom"), fiber.StatusInternalServerError, CodeServerError},
	}
	for _, test := range tests {
		t.Run(
			test.name, func(t *testing.T) {
				app := fiber.New()
				app.Get(
					"/", func(c *fiber.Ctx) error {
						return Respond(c, test.err)
					},
				)
				resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
				require.NoError(t, err)
				assert.Equal(t, test.status, resp.StatusCode)
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				var e Error
				require.NoError(t, json.Unmarshal(body, &e))
				assert.Equal(t, test.code, e.Error)
			},
		)
	}
}
