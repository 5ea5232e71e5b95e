// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application. It is the
// single owner of the issue lifecycle state machine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level inside a tenant.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// User represents a Magazinify account with authentication and 2FA fields.
// Tenant access is granted through TenantMembership rows, so one user can
// belong to several tenants with different roles.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TenantMembership links a user to a tenant with a role.
type TenantMembership struct {
	UserID    uuid.UUID `json:"user_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Allows reports whether the membership role satisfies any of the given roles.
// Owner implicitly satisfies admin, and admin implicitly satisfies editor.
func (m *TenantMembership) Allows(roles ...Role) bool {
	for _, r := range roles {
		if m.Role == r {
			return true
		}
		switch r {
		case RoleAdmin:
			if m.Role == RoleOwner {
				return true
			}
		case RoleEditor:
			if m.Role == RoleOwner || m.Role == RoleAdmin {
				return true
			}
		case RoleViewer:
			// Any membership can view.
			return true
		}
	}
	return false
}
