package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. An account has at most one role,
// assigned once via the self-service role set or by an admin.
type Role string

const (
	RoleStudent     Role = "student"
	RoleClinicAdmin Role = "clinic_admin"
	// RoleClinicMember can browse their clinic's positions and applications
	// but cannot mutate them.
	RoleClinicMember Role = "clinic_member"
	RoleAdmin        Role = "admin"
)

// ValidRole reports whether s is a member of the role enum.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleStudent, RoleClinicAdmin, RoleClinicMember, RoleAdmin:
		return true
	}
	return false
}

// Account represents an authenticated identity. Accounts are created on
// first authenticated contact with a nil role; the role is set exactly once.
type Account struct {
	AccountID uuid.UUID // UUIDv7
	Subject   string    // stable subject from the identity provider, unique

	Email string
	Name  string

	Role     *Role      // nil until the one-time role set
	ClinicID *uuid.UUID // set for clinic_admin/clinic_member accounts

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the account's role has been set to r.
func (a *Account) HasRole(r Role) bool {
	return a.Role != nil && *a.Role == r
}

// IsClinicStaff reports whether the account belongs to a clinic in any
// capacity.
func (a *Account) IsClinicStaff() bool {
	return a.HasRole(RoleClinicAdmin) || a.HasRole(RoleClinicMember)
}
