package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/certhouse/certhouse/storage/model"
)

// EnrollmentsStorage provides access to Enrollment records and keeps their
// event history.
type EnrollmentsStorage struct {
	db *gorm.DB
}

// pairEnrollments returns the enrollments of a (training, participant) pair
// except the one with id except.
func pairEnrollments(tx *gorm.DB, trainingID, participantID, except uint) ([]model.Enrollment, error) {
	var items []model.Enrollment
	q := tx.Where("training_id = ? AND participant_id = ?", trainingID, participantID)
	if except != 0 {
		q = q.Where("id <> ?", except)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "enrollments: pair lookup failed")
	}
	return items, nil
}

func recordEnrollmentEvent(tx *gorm.DB, enrollmentID uint, eventType string, from, to *string, actor string) error {
	ev := model.EnrollmentEvent{
		EnrollmentID: enrollmentID,
		Timestamp:    time.Now().Unix(),
		Type:         eventType,
		FromStatus:   from,
		ToStatus:     to,
	}
	if actor != "" {
		ev.Actor = &actor
	}
	return errors.Wrap(tx.Create(&ev).Error, "enrollments: record event failed")
}

func statusPtr(s model.EnrollmentStatus) *string {
	str := s.String()
	return &str
}

// Create registers a participant into a training. The enrollment starts as
// not-started and is tagged with the training's current categories.
func (s *EnrollmentsStorage) Create(trainingID uint, add model.AddEnrollment) (*model.Enrollment, error) {
	var item model.Enrollment
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var training model.Training
			if err := tx.First(&training, trainingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("training not found: %d", trainingID)
				}
				return errors.Wrap(err, "enrollments: training lookup failed")
			}
			var participant model.Participant
			if err := tx.First(&participant, add.ParticipantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("participant not found: %d", add.ParticipantID)
				}
				return errors.Wrap(err, "enrollments: participant lookup failed")
			}
			existing, err := pairEnrollments(tx, trainingID, add.ParticipantID, 0)
			if err != nil {
				return err
			}
			if err = model.CheckEnrollable(existing); err != nil {
				return err
			}
			coach := add.CoachID
			if coach == nil {
				coach = training.CoachID
			}
			item = model.Enrollment{
				TrainingID:    trainingID,
				ParticipantID: add.ParticipantID,
				CoachID:       coach,
				Status:        model.StatusNotStarted,
			}
			if err = tx.Create(&item).Error; err != nil {
				return errors.Wrap(err, "enrollments: create failed")
			}
			categories, err := trainingCategories(tx, trainingID)
			if err != nil {
				return err
			}
			for _, c := range categories {
				if err = tx.Create(
					&model.EnrollmentCategory{
						EnrollmentID: item.ID,
						CategoryID:   c.ID,
					},
				).Error; err != nil {
					return errors.Wrap(err, "enrollments: tag category failed")
				}
			}
			return recordEnrollmentEvent(tx, item.ID, model.EventTypeEnrolled, nil, statusPtr(item.Status), "")
		},
	)
	if err != nil {
		return nil, err
	}
	return s.Get(item.ID)
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Training").Preload("Participant").Preload("Certificate")
}

// Get returns an enrollment with its relations loaded
func (s *EnrollmentsStorage) Get(id uint) (*model.Enrollment, error) {
	var item model.Enrollment
	if err := withRelations(s.db).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("enrollment not found: %d", id)
		}
		return nil, errors.Wrap(err, "enrollments: get failed")
	}
	return &item, nil
}

// ForParticipant returns the most recent enrollment of a participant in a
// training, or nil if there is none.
func (s *EnrollmentsStorage) ForParticipant(trainingID, participantID uint) (*model.Enrollment, error) {
	var item model.Enrollment
	err := withRelations(s.db).
		Where("training_id = ? AND participant_id = ?", trainingID, participantID).
		Order("id desc").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "enrollments: lookup failed")
	}
	return &item, nil
}

// ListByTraining returns the enrollments of a training with participant and
// certificate loaded.
func (s *EnrollmentsStorage) ListByTraining(trainingID uint) ([]model.Enrollment, error) {
	var items []model.Enrollment
	if err := s.db.Preload("Participant").Preload("Certificate").
		Where("training_id = ?", trainingID).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "enrollments: list failed")
	}
	return items, nil
}

// CountByTraining returns the number of enrollments of a training
func (s *EnrollmentsStorage) CountByTraining(trainingID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&model.Enrollment{}).
		Where("training_id = ?", trainingID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "enrollments: count failed")
	}
	return count, nil
}

// UpdateStatus sets the status of an enrollment. Any defined status may be
// assigned from any other. Assigning completed provisions the placeholder
// certificate.
func (s *EnrollmentsStorage) UpdateStatus(id uint, status model.EnrollmentStatus, actor string) (
	*model.Enrollment, error,
) {
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var item model.Enrollment
			if err := tx.First(&item, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("enrollment not found: %d", id)
				}
				return errors.Wrap(err, "enrollments: get failed")
			}
			from := item.Status
			if err := model.CheckReassign(from, status); err != nil {
				return err
			}
			if from != status {
				if err := tx.Model(&model.Enrollment{}).
					Where("id = ?", id).
					Update("status", status).Error; err != nil {
					return errors.Wrap(err, "enrollments: update status failed")
				}
				if err := recordEnrollmentEvent(
					tx, id, model.EventTypeStatusChanged, statusPtr(from), statusPtr(status), actor,
				); err != nil {
					return err
				}
			}
			if status == model.StatusCompleted {
				item.Status = status
				if _, err := provisionCertificate(tx, item); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// History returns the events of an enrollment in chronological order
func (s *EnrollmentsStorage) History(id uint) ([]model.EnrollmentEvent, error) {
	var events []model.EnrollmentEvent
	if err := s.db.Where("enrollment_id = ?", id).
		Order("timestamp asc").Order("id asc").
		Find(&events).Error; err != nil {
		return nil, errors.Wrap(err, "enrollments: history failed")
	}
	return events, nil
}

// Delete soft-deletes an enrollment. Its certificate is kept.
func (s *EnrollmentsStorage) Delete(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			res := tx.Delete(&model.Enrollment{}, id)
			if res.Error != nil {
				return errors.Wrap(res.Error, "enrollments: delete failed")
			}
			if res.RowsAffected == 0 {
				return model.NotFoundErrorFmt("enrollment not found: %d", id)
			}
			return recordEnrollmentEvent(tx, id, model.EventTypeDeleted, nil, nil, "")
		},
	)
}

// Restore reverts a soft delete. Restoring an active enrollment is rejected
// if the pair got another active enrollment in the meantime.
func (s *EnrollmentsStorage) Restore(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			var item model.Enrollment
			if err := tx.Unscoped().
				Where("id = ? AND deleted_at IS NOT NULL", id).
				First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundErrorFmt("no deleted enrollment with id %d", id)
				}
				return errors.Wrap(err, "enrollments: get failed")
			}
			if item.Status.Active() {
				others, err := pairEnrollments(tx, item.TrainingID, item.ParticipantID, item.ID)
				if err != nil {
					return err
				}
				if err = model.CheckEnrollable(others); err != nil {
					return err
				}
			}
			if err := tx.Unscoped().Model(&model.Enrollment{}).
				Where("id = ?", id).
				Update("deleted_at", nil).Error; err != nil {
				return errors.Wrap(err, "enrollments: restore failed")
			}
			return recordEnrollmentEvent(tx, id, model.EventTypeRestored, nil, nil, "")
		},
	)
}
