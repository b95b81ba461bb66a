package models

import "github.com/google/uuid"

// Role tiers. The numeric values come from the roles table managed by the
// identity platform; the backend only compares against them.
const (
	RoleViewer     = 1
	RoleAuthor     = 2
	RoleEditor     = 3
	RoleAdmin      = 4
	RoleSuperAdmin = 5
)

// Profile is the read-only identity record for an authenticated user.
// The ID matches the subject claim of the platform-issued JWT.
type Profile struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	FullName string    `json:"full_name" db:"full_name" gorm:"type:text;not null"`
	Username string    `json:"username" db:"username" gorm:"type:text;not null;unique"`
	RoleID   int       `json:"role_id" db:"role_id" gorm:"not null;default:1"`
	IsActive bool      `json:"is_active" db:"is_active" gorm:"not null;default:true"`
}

// CanCreate reports whether the profile may register new requirements.
func (p Profile) CanCreate() bool {
	return p.RoleID >= RoleAuthor
}

// CanEdit reports whether the profile may modify existing requirements.
// Authors may create but not edit; there is no per-record ownership check.
func (p Profile) CanEdit() bool {
	return p.RoleID >= RoleEditor
}

// CanAdmin reports whether the profile may delete requirements and manage users.
func (p Profile) CanAdmin() bool {
	return p.RoleID >= RoleAdmin
}
