// Package logger configures the internal logrus logger
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Conf configures internal logging
type Conf struct {
	// Level is a logrus level name, e.g. "info" or "debug"
	Level string `yaml:"level"`
	// Dir is the directory of the log file; if empty logs go to stderr
	Dir string `yaml:"dir"`
	// StdErr additionally logs to stderr when Dir is set
	StdErr bool `yaml:"stderr"`
	// JSON selects the logrus JSON formatter
	JSON bool `yaml:"json"`
}

// LogFileName is the name of the internal log file inside Conf.Dir
const LogFileName = "certhouse.log"

// Init sets up the standard logrus logger. The returned closer closes the
// log file, if any.
func Init(conf Conf) (io.Closer, error) {
	level := log.InfoLevel
	if conf.Level != "" {
		l, err := log.ParseLevel(conf.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level '%s'", conf.Level)
		}
		level = l
	}
	log.SetLevel(level)
	if conf.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	if conf.Dir == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}
	f, err := os.OpenFile(
		filepath.Join(conf.Dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640,
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not open log file")
	}
	var out io.Writer = f
	if conf.StdErr {
		out = io.MultiWriter(f, os.Stderr)
	}
	log.SetOutput(out)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
