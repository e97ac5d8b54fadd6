package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/certhouse/certhouse/storage/model"
)

// CertificatesStorage provides access to Certificate records
type CertificatesStorage struct {
	db *gorm.DB
}

// Provision creates the placeholder certificate for an enrollment or returns
// the existing one.
func (s *CertificatesStorage) Provision(enrollment model.Enrollment) (*model.Certificate, error) {
	var item *model.Certificate
	err := s.db.Transaction(
		func(tx *gorm.DB) (err error) {
			item, err = provisionCertificate(tx, enrollment)
			return
		},
	)
	return item, err
}

// provisionCertificate creates a placeholder whose CreatedAt and UpdatedAt
// are the same instant. Timestamps are truncated to milliseconds so they
// survive the datetime precision of all drivers unchanged.
func provisionCertificate(tx *gorm.DB, enrollment model.Enrollment) (*model.Certificate, error) {
	if enrollment.ID == 0 {
		return nil, errors.New("certificates: enrollment has no id")
	}
	var existing model.Certificate
	err := tx.Unscoped().Where("enrollment_id = ?", enrollment.ID).First(&existing).Error
	if err == nil {
		if existing.DeletedAt.Valid {
			if err = tx.Unscoped().Model(&model.Certificate{}).
				Where("id = ?", existing.ID).
				UpdateColumn("deleted_at", nil).Error; err != nil {
				return nil, errors.Wrap(err, "certificates: revive failed")
			}
			existing.DeletedAt = gorm.DeletedAt{}
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "certificates: lookup failed")
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	item := model.Certificate{
		CreatedAt:     now,
		UpdatedAt:     now,
		EnrollmentID:  enrollment.ID,
		TrainingID:    enrollment.TrainingID,
		ParticipantID: enrollment.ParticipantID,
	}
	if err = tx.Create(&item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("certificate for enrollment %d already exists", enrollment.ID)
		}
		return nil, errors.Wrap(err, "certificates: provision failed")
	}
	return &item, nil
}

// Get returns a certificate by id
func (s *CertificatesStorage) Get(id uint) (*model.Certificate, error) {
	var item model.Certificate
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("certificate not found: %d", id)
		}
		return nil, errors.Wrap(err, "certificates: get failed")
	}
	return &item, nil
}

// ByLicense returns the published certificate with the given license number
func (s *CertificatesStorage) ByLicense(license string) (*model.Certificate, error) {
	var item model.Certificate
	if err := s.db.Where("license_number = ?", license).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("certificate not found: %s", license)
		}
		return nil, errors.Wrap(err, "certificates: get by license failed")
	}
	return &item, nil
}

// ListPublished returns the published certificates of a participant, newest
// first
func (s *CertificatesStorage) ListPublished(participantID uint) ([]model.Certificate, error) {
	var items []model.Certificate
	if err := s.db.
		Where("participant_id = ? AND created_at <> updated_at", participantID).
		Order("updated_at desc").
		Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "certificates: list failed")
	}
	return items, nil
}

// MarkPublished stores the published values on a placeholder. The write is
// conditional on the row still being a placeholder, so of two concurrent
// publishes only one succeeds; the other gets false.
func (s *CertificatesStorage) MarkPublished(id uint, published model.PublishedCertificate) (bool, error) {
	if published.LicenseNumber == "" || published.ImageRef == "" {
		return false, errors.New("certificates: license number and image reference are required")
	}
	var current model.Certificate
	if err := s.db.First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, model.NotFoundErrorFmt("certificate not found: %d", id)
		}
		return false, errors.Wrap(err, "certificates: get failed")
	}
	publishedAt := published.PublishedAt.UTC().Truncate(time.Millisecond)
	if !publishedAt.After(current.CreatedAt) {
		publishedAt = current.CreatedAt.Add(time.Millisecond)
	}
	res := s.db.Model(&model.Certificate{}).
		Where("id = ? AND created_at = updated_at", id).
		Updates(
			map[string]any{
				"license_number": published.LicenseNumber,
				"image_ref":      published.ImageRef,
				"expires_at":     published.ExpiresAt,
				"updated_at":     publishedAt,
			},
		)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return false, model.AlreadyExistsErrorFmt("license number already in use: %s", published.LicenseNumber)
		}
		return false, errors.Wrap(res.Error, "certificates: publish failed")
	}
	return res.RowsAffected > 0, nil
}
