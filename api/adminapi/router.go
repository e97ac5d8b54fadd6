package adminapi

import (
	"context"
	_ "embed"
	"net"
	neturl "net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"

	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/issuance"
	"github.com/certhouse/certhouse/storage/model"
)

//go:embed openapi.yaml
var openapiRaw []byte

// Publisher publishes certificates
type Publisher interface {
	Publish(ctx context.Context, req issuance.BatchRequest) (*issuance.Result, error)
}

// Provisioner creates certificate placeholders
type Provisioner interface {
	Provision(req issuance.BatchRequest) (*issuance.Result, error)
}

// Services are the non-storage collaborators of the admin API
type Services struct {
	Tokens      *auth.Tokens
	Publisher   Publisher
	Provisioner Provisioner
}

// Options controls optional features of the admin API registration.
type Options struct {
	// Port, when > 0, is used to adapt the serverURL to the admin API port for docs.
	Port int
}

// Register mounts all admin API routes under the provided group. All routes
// except the api docs require an admin token.
func Register(
	r fiber.Router, serverURL string, storages model.Backends, services Services, opts *Options,
) error {
	if opts != nil && opts.Port > 0 {
		serverURL = adaptServerURLPort(serverURL, opts.Port)
	}
	openapiData := ensureBearerAuthSecurity(updateOpenAPIServers(openapiRaw, serverURL))
	r.Get(
		"/openapi.yaml", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, "application/yaml")
			return c.Send(openapiData)
		},
	)

	r.Use(auth.Middleware(services.Tokens), auth.RequireRole(model.RoleAdmin))

	registerTrainings(r, storages.Trainings)
	registerParticipants(r, storages.Participants)
	registerEnrollments(r, storages.Enrollments)
	registerCertificates(r, services.Publisher, services.Provisioner)
	registerCertificateSettings(r, storages.KV)
	return nil
}

func updateOpenAPIServers(doc []byte, serverURL string) []byte {
	if len(serverURL) == 0 {
		return doc
	}
	var full map[string]any
	if err := yaml.Unmarshal(doc, &full); err != nil {
		return doc
	}
	full["servers"] = []map[string]any{
		{
			"url":         serverURL,
			"description": "This instance",
		},
	}
	res, err := yaml.Marshal(full)
	if err != nil {
		return doc
	}
	return res
}

// adaptServerURLPort updates or adds the port to the provided serverURL.
// If the input is invalid, it returns the original serverURL.
func adaptServerURLPort(serverURL string, port int) string {
	if len(serverURL) == 0 || port <= 0 {
		return serverURL
	}
	u, err := neturl.Parse(serverURL)
	if err != nil || u.Host == "" {
		return serverURL
	}
	name, _, err := net.SplitHostPort(u.Host)
	if err != nil {
		// no port present
		name = u.Host
	}
	u.Host = net.JoinHostPort(name, strconv.Itoa(port))
	return u.String()
}

// ensureBearerAuthSecurity injects a bearer security scheme and a global
// security requirement into the OpenAPI document, if not already present.
func ensureBearerAuthSecurity(doc []byte) []byte {
	var full map[string]any
	if err := yaml.Unmarshal(doc, &full); err != nil {
		return doc
	}
	components, _ := full["components"].(map[string]any)
	if components == nil {
		components = map[string]any{}
		full["components"] = components
	}
	securitySchemes, _ := components["securitySchemes"].(map[string]any)
	if securitySchemes == nil {
		securitySchemes = map[string]any{}
		components["securitySchemes"] = securitySchemes
	}
	if _, exists := securitySchemes["bearerAuth"]; !exists {
		securitySchemes["bearerAuth"] = map[string]any{
			"type":         "http",
			"scheme":       "bearer",
			"bearerFormat": "JWT",
		}
	}
	if _, exists := full["security"]; !exists {
		full["security"] = []map[string]any{{"bearerAuth": []any{}}}
	}
	res, err := yaml.Marshal(full)
	if err != nil {
		return doc
	}
	return res
}
