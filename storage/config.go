package storage

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/certhouse/certhouse/storage/model"
)

// DriverType names a supported database
type DriverType string

// Supported drivers
const (
	DriverSQLite   DriverType = "sqlite"
	DriverMySQL    DriverType = "mysql"
	DriverPostgres DriverType = "postgres"
)

// SQLiteFileName is the database file created in Config.DataDir when no
// sqlite DSN is set.
const SQLiteFileName = "certhouse.db"

type driver struct {
	open func(dsn string) gorm.Dialector
	// defaultPort and format are unset for file based databases
	defaultPort int
	format      func(DSNConf) string
}

var drivers = map[DriverType]driver{
	DriverSQLite: {
		open: sqlite.Open,
	},
	DriverMySQL: {
		open:        mysql.Open,
		defaultPort: 3306,
		format: func(c DSNConf) string {
			return fmt.Sprintf(
				"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				c.User, c.Password, c.Host, c.Port, c.DB,
			)
		},
	},
	DriverPostgres: {
		open:        postgres.Open,
		defaultPort: 5432,
		format: func(c DSNConf) string {
			return fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%d",
				c.Host, c.User, c.Password, c.DB, c.Port,
			)
		},
	},
}

// SupportedDrivers lists the drivers Connect accepts
var SupportedDrivers = []DriverType{
	DriverSQLite,
	DriverMySQL,
	DriverPostgres,
}

// DSNConf holds the parts of a network database connection string
type DSNConf struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
}

// DSN builds the connection string for a network database. A zero port is
// replaced by the driver's default port.
func DSN(driverType DriverType, conf DSNConf) (string, error) {
	d, ok := drivers[driverType]
	if !ok {
		return "", errors.Errorf("unsupported driver '%s'", driverType)
	}
	if d.format == nil {
		return "", errors.Errorf("driver %s does not use dsn", driverType)
	}
	if conf.Port == 0 {
		conf.Port = d.defaultPort
	}
	return d.format(conf), nil
}

// Config is the database configuration
type Config struct {
	Driver DriverType `yaml:"driver"`
	// DSN is the connection string; for sqlite the database file, defaulting
	// to SQLiteFileName in DataDir.
	DSN     string `yaml:"dsn"`
	DataDir string `yaml:"data_dir"`
	// Debug logs every statement
	Debug     bool           `yaml:"debug"`
	UsersHash Argon2idParams `yaml:"password_hashing"`
}

// Argon2idParams are the cost parameters for account password hashes
type Argon2idParams struct {
	Time        uint32 `yaml:"time"`
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Parallelism uint8  `yaml:"parallelism"`
	KeyLen      uint32 `yaml:"key_len"`
	SaltLen     uint32 `yaml:"salt_len"`
}

func (c Config) dsn() string {
	if c.DSN == "" && c.Driver == DriverSQLite {
		return filepath.Join(c.DataDir, SQLiteFileName)
	}
	return c.DSN
}

// Connect opens the database described by cfg
func Connect(cfg Config) (*gorm.DB, error) {
	d, ok := drivers[cfg.Driver]
	if !ok {
		return nil, errors.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(
		d.open(cfg.dsn()), &gorm.Config{
			Logger: logger.Default.LogMode(level),
		},
	)
	return db, errors.Wrapf(err, "could not open %s database", cfg.Driver)
}

// LoadStorageBackends opens the storage and returns its stores
func LoadStorageBackends(cfg Config) (model.Backends, error) {
	s, err := NewStorage(cfg)
	if err != nil {
		return model.Backends{}, err
	}
	return s.Backends(), nil
}

// Backends returns all stores of this Storage grouped as model.Backends
func (s *Storage) Backends() model.Backends {
	return model.Backends{
		Trainings:    s.TrainingsStorage(),
		Participants: s.ParticipantsStorage(),
		Enrollments:  s.EnrollmentsStorage(),
		Certificates: s.CertificatesStorage(),
		Users:        s.UsersStorage(),
		KV:           s.KeyValue(),
	}
}
