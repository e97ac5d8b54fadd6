package model

import (
	"fmt"
	"time"
)

// Role is the authorization role of a user account
type Role string

// Roles
const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// ParseRole converts a string to a Role, returning an error for invalid values.
func ParseRole(v string) (Role, error) {
	switch r := Role(v); r {
	case RoleAdmin, RoleParticipant:
		return r, nil
	}
	return "", fmt.Errorf("invalid role: %s", v)
}

// User represents a login account. Participants may be linked to one.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Username is unique identifier for login
	Username string `gorm:"uniqueIndex" json:"username"`
	// PasswordHash stores a PHC-formatted argon2id hash of the user's password
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	Role         Role   `gorm:"index" json:"role"`
	// Disabled allows soft-disable of a user without deletion
	Disabled bool `json:"disabled"`
}

// UsersStore abstracts account lookup and authentication.
type UsersStore interface {
	// Count returns the number of users present in the store
	Count() (int64, error)
	// Get returns a user by username
	Get(username string) (*User, error)
	// Create creates a user; the implementation must hash the password
	Create(username, password, displayName string, role Role) (*User, error)
	// Authenticate checks a username/password combo and returns the user
	Authenticate(username, password string) (*User, error)
}
