package certhouse

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/internal/apierror"
	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/storage/model"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func registerLogin(r fiber.Router, users model.UsersStore, tokens *auth.Tokens) {
	r.Post(
		"/auth/login", func(c *fiber.Ctx) error {
			var req loginRequest
			if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
				return c.Status(fiber.StatusBadRequest).JSON(apierror.InvalidRequest("username and password are required"))
			}
			u, err := users.Authenticate(req.Username, req.Password)
			if err != nil {
				log.WithField("username", req.Username).WithError(err).Debug("login failed")
				return c.Status(fiber.StatusUnauthorized).JSON(apierror.Unauthorized("invalid credentials"))
			}
			token, err := tokens.Issue(*u)
			if err != nil {
				return apierror.Respond(c, err)
			}
			return c.JSON(
				tokenResponse{
					AccessToken: token,
					TokenType:   "Bearer",
					ExpiresIn:   int64(tokens.Lifetime().Seconds()),
				},
			)
		},
	)
}
