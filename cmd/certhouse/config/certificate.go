package config

import (
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/certhouse/certhouse/certificate"
)

type certificateConf struct {
	// AssetsDir holds template backgrounds and signature images
	AssetsDir     string `yaml:"assets_dir"`
	LicensePrefix string `yaml:"license_prefix"`
}

func (c *certificateConf) validate() error {
	if c.LicensePrefix == "" {
		c.LicensePrefix = certificate.DefaultLicensePrefix
	}
	return checkDirExists("certificate assets", c.AssetsDir)
}

// Assets returns the resolver for the configured assets dir
func (c certificateConf) Assets() certificate.AssetResolver {
	if c.AssetsDir == "" {
		return certificate.AssetResolver{}
	}
	return certificate.AssetResolver{FS: osfs.New(c.AssetsDir)}
}

// Licenses returns the configured license generator
func (c certificateConf) Licenses() certificate.LicenseGenerator {
	return certificate.LicenseGenerator{Prefix: c.LicensePrefix}
}

var defaultCertificateConf = certificateConf{
	LicensePrefix: certificate.DefaultLicensePrefix,
}
