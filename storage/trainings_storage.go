package storage

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"tideland.dev/go/slices"

	"github.com/certhouse/certhouse/storage/model"
)

// TrainingsStorage provides access to Training records and their category links.
type TrainingsStorage struct {
	db *gorm.DB
}

// Create creates a training and links it to the categories with the passed
// codes; unknown codes create a new category.
func (s *TrainingsStorage) Create(add model.AddTraining) (*model.Training, error) {
	item := &model.Training{
		Name:            add.Name,
		Price:           add.Price,
		Location:        add.Location,
		StartsAt:        add.StartsAt,
		EndsAt:          add.EndsAt,
		CoachID:         add.CoachID,
		SignatoryName:   add.SignatoryName,
		SignatoryTitle:  add.SignatoryTitle,
		SignatureImage:  add.SignatureImage,
		TemplateImage:   add.TemplateImage,
		TemplateID:      add.TemplateID,
		TemplateVariant: add.TemplateVariant,
	}
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := tx.Create(item).Error; err != nil {
				return errors.Wrap(err, "trainings: create failed")
			}
			return linkCategories(tx, item.ID, normalizeCodes(add.CategoryCodes))
		},
	)
	if err != nil {
		return nil, err
	}
	return s.Get(item.ID)
}

// Get returns a training with its categories
func (s *TrainingsStorage) Get(id uint) (*model.Training, error) {
	var item model.Training
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("training not found: %d", id)
		}
		return nil, errors.Wrap(err, "trainings: get failed")
	}
	categories, err := trainingCategories(s.db, id)
	if err != nil {
		return nil, err
	}
	item.Categories = categories
	return &item, nil
}

// List returns all trainings ordered by start
func (s *TrainingsStorage) List() ([]model.Training, error) {
	var items []model.Training
	if err := s.db.Order("starts_at desc").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "trainings: list failed")
	}
	for i := range items {
		categories, err := trainingCategories(s.db, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Categories = categories
	}
	return items, nil
}

// SetCategories replaces the category links of a training
func (s *TrainingsStorage) SetCategories(id uint, codes []string) (*model.Training, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	codes = normalizeCodes(codes)
	have := current.CategoryCodes()
	added := slices.Subtract(codes, have)
	removed := slices.Subtract(have, codes)
	err = s.db.Transaction(
		func(tx *gorm.DB) error {
			if err = linkCategories(tx, id, added); err != nil {
				return err
			}
			if len(removed) == 0 {
				return nil
			}
			var removedIDs []uint
			if err = tx.Model(&model.Category{}).Where("code IN ?", removed).Pluck("id", &removedIDs).Error; err != nil {
				return errors.Wrap(err, "trainings: category lookup failed")
			}
			return errors.Wrap(
				tx.Where("training_id = ? AND category_id IN ?", id, removedIDs).
					Delete(&model.TrainingCategory{}).Error,
				"trainings: unlink categories failed",
			)
		},
	)
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete soft-deletes a training, its category links and its enrollments.
// All rows get the same deletion time so Restore can tell them apart from
// rows that were deleted on their own before. Certificates stay untouched.
func (s *TrainingsStorage) Delete(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			now := time.Now()
			res := tx.Model(&model.Training{}).Where("id = ?", id).Update("deleted_at", now)
			if res.Error != nil {
				return errors.Wrap(res.Error, "trainings: delete failed")
			}
			if res.RowsAffected == 0 {
				return model.NotFoundErrorFmt("training not found: %d", id)
			}
			if err := tx.Model(&model.TrainingCategory{}).
				Where("training_id = ?", id).
				Update("deleted_at", now).Error; err != nil {
				return errors.Wrap(err, "trainings: delete category links failed")
			}
			if err := tx.Model(&model.Enrollment{}).
				Where("training_id = ?", id).
				Update("deleted_at", now).Error; err != nil {
				return errors.Wrap(err, "trainings: delete enrollments failed")
			}
			return nil
		},
	)
}

// deletedWith reports whether a row was soft-deleted together with a
// training deleted at at.
func deletedWith(d gorm.DeletedAt, at time.Time) bool {
	return d.Valid && !d.Time.Before(at)
}

// Restore reverts a soft delete of a training including the category links
// and enrollments that were deleted with it. Links and enrollments removed
// before the training was deleted stay deleted. An active enrollment is left
// deleted if its participant got another active enrollment in the meantime.
func (s *TrainingsStorage) Restore(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			var training model.Training
			if err := tx.Unscoped().
				Where("id = ? AND deleted_at IS NOT NULL", id).
				First(&training).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("no deleted training with id %d", id)
				}
				return errors.Wrap(err, "trainings: get failed")
			}
			deletedAt := training.DeletedAt.Time
			if err := tx.Unscoped().Model(&model.Training{}).
				Where("id = ?", id).
				Update("deleted_at", nil).Error; err != nil {
				return errors.Wrap(err, "trainings: restore failed")
			}
			if err := restoreCategoryLinks(tx, id, deletedAt); err != nil {
				return err
			}
			return restoreEnrollments(tx, id, deletedAt)
		},
	)
}

func restoreCategoryLinks(tx *gorm.DB, trainingID uint, deletedAt time.Time) error {
	var links []model.TrainingCategory
	if err := tx.Unscoped().
		Where("training_id = ? AND deleted_at IS NOT NULL", trainingID).
		Find(&links).Error; err != nil {
		return errors.Wrap(err, "trainings: load category links failed")
	}
	var categoryIDs []uint
	for _, l := range links {
		if deletedWith(l.DeletedAt, deletedAt) {
			categoryIDs = append(categoryIDs, l.CategoryID)
		}
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	return errors.Wrap(
		tx.Unscoped().Model(&model.TrainingCategory{}).
			Where("training_id = ? AND category_id IN ?", trainingID, categoryIDs).
			Update("deleted_at", nil).Error,
		"trainings: restore category links failed",
	)
}

func restoreEnrollments(tx *gorm.DB, trainingID uint, deletedAt time.Time) error {
	var enrollments []model.Enrollment
	if err := tx.Unscoped().
		Where("training_id = ? AND deleted_at IS NOT NULL", trainingID).
		Order("id desc").
		Find(&enrollments).Error; err != nil {
		return errors.Wrap(err, "trainings: load enrollments failed")
	}
	for _, e := range enrollments {
		if !deletedWith(e.DeletedAt, deletedAt) {
			continue
		}
		if e.Status.Active() {
			others, err := pairEnrollments(tx, e.TrainingID, e.ParticipantID, e.ID)
			if err != nil {
				return err
			}
			if model.CheckEnrollable(others) != nil {
				continue
			}
		}
		if err := tx.Unscoped().Model(&model.Enrollment{}).
			Where("id = ?", e.ID).
			Update("deleted_at", nil).Error; err != nil {
			return errors.Wrap(err, "trainings: restore enrollments failed")
		}
	}
	return nil
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// linkCategories links the training to the categories with the given codes,
// creating categories that do not exist yet. Previously soft-deleted links
// are revived.
func linkCategories(tx *gorm.DB, trainingID uint, codes []string) error {
	for _, code := range codes {
		category := model.Category{Code: code}
		if err := tx.Where(model.Category{Code: code}).
			Attrs(model.Category{Name: code}).
			FirstOrCreate(&category).Error; err != nil {
			return errors.Wrapf(err, "trainings: resolve category '%s' failed", code)
		}
		link := model.TrainingCategory{
			TrainingID: trainingID,
			CategoryID: category.ID,
		}
		if err := tx.Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "training_id"}, {Name: "category_id"}},
				DoUpdates: clause.Assignments(map[string]any{"deleted_at": nil}),
			},
		).Create(&link).Error; err != nil {
			return errors.Wrap(err, "trainings: link category failed")
		}
	}
	return nil
}

func trainingCategories(db *gorm.DB, trainingID uint) ([]model.Category, error) {
	var categories []model.Category
	err := db.Model(&model.Category{}).
		Joins(
			"JOIN training_categories ON training_categories.category_id = categories.id"+
				" AND training_categories.deleted_at IS NULL",
		).
		Where("training_categories.training_id = ?", trainingID).
		Order("categories.code").
		Find(&categories).Error
	return categories, errors.Wrap(err, "trainings: load categories failed")
}
