package config

import (
	"github.com/pkg/errors"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/certhouse/certhouse/internal/logger"
)

// loggingConf holds all logging-related configuration under the `logging` key.
//
// YAML example:
//
//	logging:
//	  level: info
//	  dir: /var/log/certhouse
//	  stderr: false
//	  json: false
type loggingConf struct {
	logger.Conf `yaml:",inline"`
}

func checkDirExists(kind, dir string) error {
	if dir != "" && !fileutils.FileExists(dir) {
		return errors.Errorf("%s directory '%s' does not exist", kind, dir)
	}
	return nil
}

func (log *loggingConf) validate() error {
	return checkDirExists("logging", log.Dir)
}

var defaultLoggingConf = loggingConf{
	Conf: logger.Conf{
		Level: "info",
	},
}
