package config

import (
	"github.com/pkg/errors"

	"github.com/certhouse/certhouse/artifacts"
)

// artifactsConf configures where rendered certificates are stored.
//
// YAML example:
//
//	artifacts:
//	  dir: /var/lib/certhouse/certificates
//	  url_prefix: /certificates
//	  minio:
//	    endpoint: minio:9000
//	    bucket: certificates
type artifactsConf struct {
	Dir       string               `yaml:"dir"`
	URLPrefix string               `yaml:"url_prefix"`
	Minio     *artifacts.MinioConf `yaml:"minio"`
}

// UsesMinio reports whether certificates go to object storage
func (c artifactsConf) UsesMinio() bool {
	return c.Minio != nil && c.Minio.Endpoint != ""
}

func (c *artifactsConf) validate() error {
	if c.URLPrefix == "" {
		c.URLPrefix = defaultArtifactsConf.URLPrefix
	}
	if c.UsesMinio() {
		if c.Minio.Bucket == "" {
			return errors.New("error in artifacts conf: minio bucket must be set")
		}
		return nil
	}
	if c.Dir == "" {
		return errors.New("error in artifacts conf: dir must be set")
	}
	return nil
}

// Store creates the configured artifacts.Store
func (c artifactsConf) Store() (artifacts.Store, error) {
	if c.UsesMinio() {
		s, err := artifacts.NewMinioStore(*c.Minio, c.URLPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := artifacts.NewDirStore(c.Dir, c.URLPrefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var defaultArtifactsConf = artifactsConf{
	Dir:       "certificates",
	URLPrefix: "/certificates",
}
