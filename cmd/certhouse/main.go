package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse"
	"github.com/certhouse/certhouse/certificate"
	"github.com/certhouse/certhouse/cmd/certhouse/config"
	"github.com/certhouse/certhouse/internal/auth"
	"github.com/certhouse/certhouse/internal/cache"
	"github.com/certhouse/certhouse/internal/logger"
	"github.com/certhouse/certhouse/internal/version"
	"github.com/certhouse/certhouse/issuance"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	if err := config.Load(configFile); err != nil {
		log.WithError(err).Fatal("could not load config")
	}
	c := config.Get()
	logFile, err := logger.Init(c.Logging.Conf)
	if err != nil {
		log.WithError(err).Fatal("could not init logger")
	}
	defer logFile.Close()
	log.WithField("version", version.VERSION).Info("Loaded Config")

	redis, err := cache.New(context.Background(), c.Caching.CacheConfig())
	if err != nil {
		log.WithError(err).Fatal("could not init redis cache")
	}
	defer redis.Close()
	if redis.Enabled() {
		log.Info("Loaded Redis Cache")
	}

	backs, err := config.LoadStorageBackends(c)
	if err != nil {
		log.Fatal(err)
	}

	tokens, err := auth.NewTokens([]byte(c.API.JWTSecret), c.API.Issuer, c.API.TokenLifetime.Duration())
	if err != nil {
		log.Fatal(err)
	}
	renderer, err := certificate.NewRenderer()
	if err != nil {
		log.WithError(err).Fatal("could not load certificate fonts")
	}
	store, err := c.Artifacts.Store()
	if err != nil {
		log.WithError(err).Fatal("could not init artifact store")
	}

	services := certhouse.Services{
		Tokens: tokens,
		Publisher: &issuance.Publisher{
			Enrollments:  backs.Enrollments,
			Certificates: backs.Certificates,
			KV:           backs.KV,
			Renderer:     renderer,
			Licenses:     c.Certificate.Licenses(),
			Artifacts:    store,
			Assets:       c.Certificate.Assets(),
		},
		Provisioner: &issuance.Provisioner{
			Enrollments:  backs.Enrollments,
			Certificates: backs.Certificates,
		},
		Cache:                 redis,
		CertificatesURLPrefix: c.Artifacts.URLPrefix,
	}
	if !c.Artifacts.UsesMinio() {
		services.CertificatesDir = c.Artifacts.Dir
	}

	ch, err := certhouse.NewCertHouse(c.Server, backs, services)
	if err != nil {
		log.Fatal(err)
	}
	log.Info("Added Endpoints")
	ch.Start()
}
