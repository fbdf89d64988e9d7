package types

import "time"

// Roles recognised by the access control layer.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role is one of patient, doctor or admin.
	Role string `json:"role" db:"role"`

	// Email is the user's optional contact address.
	Email *string `json:"email,omitempty" db:"email"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserPatch lists the user fields an update may change.
// Nil fields are left untouched.
type UserPatch struct {
	Username     *string `json:"username,omitempty"`
	PasswordHash *string `json:"-"`
	Role         *string `json:"role,omitempty"`
	Email        *string `json:"email,omitempty"`
}

// Empty reports whether the patch carries no field.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.Role == nil && p.Email == nil
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}
