// Package artifacts stores rendered certificate images.
package artifacts

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Store persists artifacts under a flat name and returns the public
// reference they can be fetched from.
type Store interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// ImageName returns the artifact name of the certificate with the given
// license number
func ImageName(license string) string {
	return license + ".png"
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.Errorf("invalid artifact name '%s'", name)
	}
	return nil
}

func joinRef(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if strings.Contains(prefix, "://") {
		return strings.TrimSuffix(prefix, "/") + "/" + name
	}
	return path.Join(prefix, name)
}
