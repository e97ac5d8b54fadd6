package artifacts

import (
	"context"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// BillyStore writes artifacts into a billy filesystem; refs are
// URLPrefix/name
type BillyStore struct {
	FS        billy.Filesystem
	URLPrefix string
}

// NewDirStore returns a BillyStore rooted in dir on the local disk
func NewDirStore(dir, urlPrefix string) (*BillyStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "could not create artifact directory '%s'", dir)
	}
	return &BillyStore{
		FS:        osfs.New(dir),
		URLPrefix: urlPrefix,
	}, nil
}

// Write implements Store
func (s *BillyStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// write to a temporary file first so readers never see partial images
	tmp := name + ".tmp"
	if err := util.WriteFile(s.FS, tmp, data, 0o644); err != nil {
		_ = s.FS.Remove(tmp)
		return "", errors.Wrapf(err, "could not write artifact '%s'", name)
	}
	if err := s.FS.Rename(tmp, name); err != nil {
		_ = s.FS.Remove(tmp)
		return "", errors.Wrapf(err, "could not store artifact '%s'", name)
	}
	return joinRef(s.URLPrefix, name), nil
}

// Delete implements Store; a missing artifact is not an error
func (s *BillyStore) Delete(_ context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.FS.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "could not delete artifact '%s'", name)
	}
	return nil
}
