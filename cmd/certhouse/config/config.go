// Package config loads the certhouse yaml configuration
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	"github.com/certhouse/certhouse"
)

// Environment variables that override secrets from the config file
const (
	EnvJWTSecret  = "CERTHOUSE_JWT_SECRET"
	EnvDBPassword = "CERTHOUSE_DB_PASSWORD"
	EnvConfigFile = "CERTHOUSE_CONFIG"
)

// Config holds the complete configuration
type Config struct {
	Server      certhouse.ServerConf `yaml:"server"`
	Logging     loggingConf          `yaml:"logging"`
	Storage     storageConf          `yaml:"storage"`
	API         apiConf              `yaml:"api"`
	Caching     cachingConf          `yaml:"cache"`
	Artifacts   artifactsConf        `yaml:"artifacts"`
	Certificate certificateConf      `yaml:"certificate"`
}

var conf *Config

var possibleConfigLocations = []string{
	".",
	"config",
	"/config",
	"/certhouse/config",
	"/certhouse",
	"/etc/certhouse",
}

// Get returns the loaded Config
func Get() *Config {
	return conf
}

func defaultConfig() Config {
	return Config{
		Server: certhouse.ServerConf{
			Port: 7672,
		},
		Logging:     defaultLoggingConf,
		Storage:     defaultStorageConf,
		API:         defaultAPIConf,
		Artifacts:   defaultArtifactsConf,
		Certificate: defaultCertificateConf,
	}
}

// Load reads the config file, applies environment overrides and validates
// the result. An empty filename searches the default locations for
// config.yaml.
func Load(filename string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("could not load .env file")
	}
	if filename == "" {
		filename = os.Getenv(EnvConfigFile)
	}
	data, err := readConfigFile(filename)
	if err != nil {
		return err
	}
	c, err := parse(data)
	if err != nil {
		return err
	}
	conf = c
	return nil
}

func readConfigFile(filename string) ([]byte, error) {
	if filename != "" {
		data, err := os.ReadFile(filename)
		return data, errors.Wrapf(err, "could not read config file '%s'", filename)
	}
	for _, dir := range possibleConfigLocations {
		p := filepath.Join(dir, "config.yaml")
		if fileutils.FileExists(p) {
			log.WithField("file", p).Debug("found config file")
			data, err := os.ReadFile(p)
			return data, errors.Wrapf(err, "could not read config file '%s'", p)
		}
	}
	return nil, errors.New("could not find config file in any of the possible locations")
}

func parse(data []byte) (*Config, error) {
	c := defaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "could not parse config file")
	}
	c.applyEnv()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.API.JWTSecret = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Storage.Password = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 && !c.Server.TLS.Enabled {
		return errors.New("error in server conf: port must be set")
	}
	if c.Server.TLS.Enabled && (c.Server.TLS.Cert == "" || c.Server.TLS.Key == "") {
		return errors.New("error in server conf: tls cert and key must be set")
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Artifacts.validate(); err != nil {
		return err
	}
	return c.Certificate.validate()
}
