package storage

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/certhouse/certhouse/storage/model"
)

// GetCertificateSettings returns the issuance settings, filling unset values
// with their defaults.
func GetCertificateSettings(kvStorage model.KeyValueStore) (model.CertificateSettings, error) {
	settings := model.CertificateSettings{
		ValidityYears: model.DefaultValidityYears,
	}
	if kvStorage == nil {
		return settings, nil
	}
	if _, err := kvStorage.GetAs(
		model.KeyValueScopeCertificate,
		model.KeyValueKeySettings, &settings,
	); err != nil {
		return settings, err
	}
	if settings.ValidityYears <= 0 {
		settings.ValidityYears = model.DefaultValidityYears
	}
	return settings, nil
}

// SetCertificateSettings stores the issuance settings
func SetCertificateSettings(kvStorage model.KeyValueStore, settings model.CertificateSettings) error {
	if kvStorage == nil {
		return errors.New("key value store is not set")
	}
	if settings.ValidityYears < 0 {
		return model.ValidationError("validity_years must not be negative")
	}
	return kvStorage.SetAny(model.KeyValueScopeCertificate, model.KeyValueKeySettings, settings)
}

// isUniqueConstraintError performs a cheap check across supported drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsAny(msg, "UNIQUE constraint failed") || // SQLite
		containsAny(msg, "Duplicate entry", "Error 1062") || // MySQL
		containsAny(msg, "duplicate key value", "violates unique constraint") // Postgres
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
