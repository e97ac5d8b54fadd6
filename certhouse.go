package certhouse

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/api/adminapi"
	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/internal/cache"
	"github.com/certhouse/certhouse/internal/version"
	"github.com/certhouse/certhouse/storage/model"
)

// staticMountPath returns the route the certificate files are served under.
// An absolute url prefix contributes only its path.
func staticMountPath(prefix string) string {
	if u, err := url.Parse(prefix); err == nil && u.IsAbs() {
		prefix = u.Path
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		return "/certificates"
	}
	return prefix
}

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	ErrorHandler:   handleError,
	Network:        "tcp",
}

// Services are the collaborators of the http endpoints that are not storage
type Services struct {
	Tokens      *auth.Tokens
	Publisher   adminapi.Publisher
	Provisioner adminapi.Provisioner
	Cache       *cache.Cache
	// CertificatesDir, if set, is served under CertificatesURLPrefix
	CertificatesDir       string
	CertificatesURLPrefix string
}

// CertHouse is the http server of the training and certificate backend
type CertHouse struct {
	server     *fiber.App
	serverConf ServerConf
}

// NewCertHouse creates a new CertHouse and registers all routes
func NewCertHouse(serverConf ServerConf, storages model.Backends, services Services) (*CertHouse, error) {
	if services.Tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	conf := FiberServerConfig
	if tps := serverConf.TrustedProxies; len(tps) > 0 {
		conf.TrustedProxies = serverConf.TrustedProxies
		conf.EnableTrustedProxyCheck = true
	}
	conf.ProxyHeader = serverConf.ForwardedIPHeader
	server := fiber.New(conf)
	server.Use(recover.New())
	server.Use(compress.New())
	server.Use(logger.New())
	server.Use(requestid.New())
	if len(serverConf.CORSOrigins) > 0 {
		server.Use(
			cors.New(
				cors.Config{
					AllowOrigins: strings.Join(serverConf.CORSOrigins, ","),
					AllowHeaders: "Origin, Content-Type, Accept, Authorization",
				},
			),
		)
	}
	server.Use(
		func(c *fiber.Ctx) error {
			c.Set("Server", version.UserAgent())
			return c.Next()
		},
	)

	if services.CertificatesDir != "" {
		server.Static(
			staticMountPath(services.CertificatesURLPrefix), services.CertificatesDir, fiber.Static{
				Compress: false,
				MaxAge:   86400,
			},
		)
	}

	registerVerification(server, storages, services.Cache)

	v1 := server.Group("/api/v1")
	registerLogin(v1, storages.Users, services.Tokens)
	registerParticipantAPI(v1, storages, services.Tokens)

	docsURL := strings.TrimSuffix(serverConf.ExternalURL, "/")
	var adminOpts *adminapi.Options
	if docsURL == "" {
		docsURL = "http://localhost"
		adminOpts = &adminapi.Options{Port: serverConf.Port}
	}
	if err := adminapi.Register(
		v1.Group("/admin"), docsURL+"/api/v1/admin", storages,
		adminapi.Services{
			Tokens:      services.Tokens,
			Publisher:   services.Publisher,
			Provisioner: services.Provisioner,
		}, adminOpts,
	); err != nil {
		return nil, err
	}
	return &CertHouse{
		server:     server,
		serverConf: serverConf,
	}, nil
}

// HttpHandlerFunc returns an http.HandlerFunc for serving all the necessary endpoints
func (ch CertHouse) HttpHandlerFunc() http.HandlerFunc {
	return adaptor.FiberApp(ch.server)
}

// App returns the underlying fiber.App
func (ch CertHouse) App() *fiber.App {
	return ch.server
}

// Listen starts an http server at the specific address for serving all the
// necessary endpoints
func (ch CertHouse) Listen(addr string) error {
	return ch.server.Listen(addr)
}

// Shutdown gracefully stops the server
func (ch CertHouse) Shutdown() error {
	return ch.server.Shutdown()
}

// Start starts the server as configured and blocks
func (ch CertHouse) Start() {
	conf := ch.serverConf
	if !conf.TLS.Enabled {
		log.WithField("port", conf.Port).Info("TLS is disabled starting http server")
		log.WithError(ch.server.Listen(fmt.Sprintf("%s:%d", conf.IPListen, conf.Port))).Fatal()
	}
	// TLS enabled
	if conf.TLS.RedirectHTTP {
		httpServer := fiber.New(FiberServerConfig)
		httpServer.All(
			"*", func(ctx *fiber.Ctx) error {
				//goland:noinspection HttpUrlsUsage
				return ctx.Redirect(
					strings.Replace(ctx.Request().URI().String(), "http://", "https://", 1),
					fiber.StatusPermanentRedirect,
				)
			},
		)
		log.Info("TLS and http redirect enabled, starting redirect server on port 80")
		go func() {
			log.WithError(httpServer.Listen(":80")).Fatal()
		}()
	}
	time.Sleep(time.Millisecond) // This is just for a more pretty output with the tls header printed after the http one
	log.Info("TLS enabled, starting https server on port 443")
	log.WithError(ch.server.ListenTLS(":443", conf.TLS.Cert, conf.TLS.Key)).Fatal()
}
