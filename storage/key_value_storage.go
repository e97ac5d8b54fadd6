package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/certhouse/certhouse/storage/model"
)

// KeyValueStorage implements model.KeyValueStore using GORM.
type KeyValueStorage struct {
	db *gorm.DB
}

// KeyValue provides an accessor for scoped key-value storage.
func (s *Storage) KeyValue() *KeyValueStorage {
	return &KeyValueStorage{db: s.db}
}

// Get returns the JSON value for a (scope, key). If not found, returns nil, nil.
func (s *KeyValueStorage) Get(scope, key string) (datatypes.JSON, error) {
	var raw []byte
	row := s.db.Model(&model.KeyValue{}).
		Select("value").
		Where(kvKey(scope, key)).
		Row()
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "kv: get failed")
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// Set upserts the JSON value for a (scope, key).
func (s *KeyValueStorage) Set(scope, key string, value datatypes.JSON) error {
	kv := model.KeyValue{
		Scope: scope,
		Key:   key,
		Value: value,
	}
	err := s.db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{
				{Name: "scope"},
				{Name: "key"},
			},
			DoUpdates: clause.AssignmentColumns(
				[]string{
					"value",
					"updated_at",
				},
			),
		},
	).Create(&kv).Error
	return errors.Wrapf(err, "kv: set '%s/%s' failed", scope, key)
}

// Delete removes a (scope, key) pair. No error if it's missing.
func (s *KeyValueStorage) Delete(scope, key string) error {
	err := s.db.Unscoped().
		Where(kvKey(scope, key)).
		Delete(&model.KeyValue{}).Error
	return errors.Wrap(err, "kv: delete failed")
}

// GetAs retrieves and unmarshals the value for (scope, key) into out.
// out must be a pointer to the target type. Returns (false, nil) if not found.
func (s *KeyValueStorage) GetAs(scope, key string, out any) (bool, error) {
	raw, err := s.Get(scope, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "kv: value of '%s/%s' is malformed", scope, key)
	}
	return true, nil
}

// SetAny marshals v to JSON and stores it at (scope, key).
func (s *KeyValueStorage) SetAny(scope, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	return s.Set(scope, key, datatypes.JSON(b))
}

// kvKey builds the condition for a (scope, key) pair. A map is used instead
// of a struct so the empty global scope is not dropped as a zero value.
func kvKey(scope, key string) map[string]any {
	return map[string]any{
		"scope": scope,
		"key":   key,
	}
}
