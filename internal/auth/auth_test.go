package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhouse/certhouse/storage/model"
)

var testSecret = []byte(strings.Repeat("s", 32))

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tokens, err := NewTokens(testSecret, "certhouse-test", time.Hour)
	require.NoError(t, err)
	return tokens
}

func TestNewTokens_ShortSecret(t *testing.T) {
	_, err := NewTokens([]byte("short"), "x", time.Hour)
	assert.Error(t, err)
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := newTestTokens(t)
	tok, err := tokens.Issue(model.User{ID: 7, Username: "alice", Role: model.RoleAdmin})
	require.NoError(t, err)

	id, err := tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id.ID)
	assert.Equal(t, "alice", id.Username)
	assert.True(t, id.IsAdmin())
}

func TestTokens_Rejects(t *testing.T) {
	tokens := newTestTokens(t)
	tok, err := tokens.Issue(model.User{ID: 1, Role: model.RoleParticipant})
	require.NoError(t, err)

	other, err := NewTokens([]byte(strings.Repeat("o", 32)), "certhouse-test", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.Error(t, err, "foreign signature")

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Verify(tok)
	assert.Error(t, err, "expired")

	_, err = tokens.Verify("garbage")
	assert.Error(t, err)
}

func testApp(tokens *Tokens) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(tokens))
	app.Get(
		"/me", func(c *fiber.Ctx) error {
			id, _ := FromCtx(c)
			return c.SendString(string(id.Role))
		},
	)
	app.Get(
		"/admin", RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddleware(t *testing.T) {
	tokens := newTestTokens(t)
	app := testApp(tokens)
	admin, err := tokens.Issue(model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)
	participant, err := tokens.Issue(model.User{ID: 2, Role: model.RoleParticipant})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", "nope"))
	assert.Equal(t, fiber.StatusOK, request(t, app, "/me", participant))
	assert.Equal(t, fiber.StatusForbidden, request(t, app, "/admin", participant))
	assert.Equal(t, fiber.StatusNoContent, request(t, app, "/admin", admin))
}
