package types

import (
	"encoding/json"
	"time"
)

// User represents an account in the recipe book.
// It contains identity, role, reputation, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in serialized output.
	PasswordHash string `json:"-" db:"password_hash"`

	// Email is the user's email address.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level.
	Role Role `json:"role" db:"role"`

	// Reputation is the net number of upvotes received on the user's posts.
	// It may go negative.
	Reputation int `json:"reputation" db:"reputation"`

	// UUID is a random identifier generated when the account is created.
	UUID string `json:"uuid" db:"uuid"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// Role represents the authorization level of a user.
type Role int

// Supported roles. The numeric values are persisted.
const (
	// RoleRegular is an ordinary account.
	RoleRegular Role = iota

	// RoleAdmin may moderate content created by other users.
	RoleAdmin
)

// IsAdmin reports whether the role grants moderation rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRegular || r == RoleAdmin
}

// String returns the lowercase role name used in logs and CLI output.
func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "regular"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}
