package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KeyValueScopeGlobal      = ""
	KeyValueScopeCertificate = "certificate"

	KeyValueKeySettings = "settings"
)

// KeyValue stores arbitrary key-value data.
//
// Values are stored as JSON via datatypes.JSON, which uses the native JSON
// type where the database has one and TEXT otherwise. The `Scope` field
// namespaces keys of different features.
type KeyValue struct {
	CreatedAt int            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Scope allows grouping keys by namespace; empty string is global scope.
	Scope string `gorm:"primaryKey" json:"scope"`

	// Key is the identifier within a scope.
	Key string `gorm:"primaryKey" json:"key"`

	Value datatypes.JSON `json:"value"`
}

// KeyValueStore is the scoped key-value abstraction used by handlers.
type KeyValueStore interface {
	// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
	Get(scope, key string) (datatypes.JSON, error)
	// Set stores/replaces the value for a (scope, key).
	Set(scope, key string, value datatypes.JSON) error
	// Delete removes the entry for a (scope, key). No error if missing.
	Delete(scope, key string) error
	// GetAs unmarshals the value into out; returns (false, nil) if not found.
	GetAs(scope, key string, out any) (bool, error)
	// SetAny marshals v to JSON and stores it.
	SetAny(scope, key string, v any) error
}
