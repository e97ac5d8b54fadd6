package certificate

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"

	"github.com/certhouse/certhouse/storage/model"
)

// AssetResolver loads template and signature images referenced by a
// training from a filesystem
type AssetResolver struct {
	FS billy.Filesystem
}

// LegacyTemplateName returns the file name used for numeric template ids
// by older trainings that have no explicit template reference
func LegacyTemplateName(templateID uint) string {
	return fmt.Sprintf("template-%d.png", templateID)
}

// Template returns the encoded background image of the training, or nil if
// it has none or the file does not exist.
func (r AssetResolver) Template(t model.Training) ([]byte, error) {
	ref := t.TemplateImage
	if ref == "" && t.TemplateID != nil {
		ref = LegacyTemplateName(*t.TemplateID)
	}
	return r.load(ref)
}

// Signature returns the encoded signature image of the training, or nil if
// it has none or the file does not exist.
func (r AssetResolver) Signature(t model.Training) ([]byte, error) {
	return r.load(t.SignatureImage)
}

func (r AssetResolver) load(ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || r.FS == nil {
		return nil, nil
	}
	name, err := cleanAssetRef(ref)
	if err != nil {
		return nil, err
	}
	f, err := r.FS.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "could not open asset '%s'", ref)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	return data, errors.Wrapf(err, "could not read asset '%s'", ref)
}

func cleanAssetRef(ref string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(ref, "\\", "/"))
	if strings.Contains(ref, "..") {
		return "", errors.Errorf("invalid asset reference '%s'", ref)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
