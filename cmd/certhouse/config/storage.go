package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/certhouse/certhouse/storage"
	"github.com/certhouse/certhouse/storage/model"
)

type storageConf struct {
	Driver  storage.DriverType `yaml:"driver"`
	DataDir string             `yaml:"data_dir"`
	DSN     string             `yaml:"dsn"`
	storage.DSNConf `yaml:",inline"`
	Debug           bool `yaml:"debug"`
}

func (c *storageConf) validate() error {
	if c.Driver == storage.DriverSQLite {
		if c.DataDir == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return checkDirExists("storage data", c.DataDir)
	}
	var err error
	if c.DSN == "" {
		c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
	}
	return err
}

var defaultStorageConf = storageConf{
	Driver:  storage.DriverSQLite,
	DataDir: ".",
	DSNConf: storage.DSNConf{
		User: "certhouse",
		Host: "localhost",
		DB:   "certhouse",
	},
	Debug: false,
}

// StorageConfig returns the storage.Config for the passed Config
func StorageConfig(c *Config) storage.Config {
	return storage.Config{
		Driver:    c.Storage.Driver,
		DSN:       c.Storage.DSN,
		DataDir:   c.Storage.DataDir,
		Debug:     c.Storage.Debug,
		UsersHash: c.API.Argon2idParams,
	}
}

// LoadStorage opens the configured database
func LoadStorage(c *Config) (*storage.Storage, error) {
	s, err := storage.NewStorage(StorageConfig(c))
	if err != nil {
		return nil, err
	}
	log.WithField("driver", c.Storage.Driver).Info("Loaded storage backend")
	return s, nil
}

// LoadStorageBackends loads and returns the storage backends for the passed Config
func LoadStorageBackends(c *Config) (model.Backends, error) {
	s, err := LoadStorage(c)
	if err != nil {
		return model.Backends{}, err
	}
	return s.Backends(), nil
}
