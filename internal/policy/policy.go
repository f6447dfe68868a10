// Package policy implements the role/scope decision table. Every endpoint
// consults Authorize instead of comparing roles itself; the returned Scope
// is the ownership predicate the handler attaches to its store query.
package policy

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Operation represents a class of authorized action.
type Operation string

const (
	// OpReadOwn covers reads of the caller's own profile, applications and
	// documents.
	OpReadOwn Operation = "read-own"
	// OpWriteOwn covers writes to the caller's own records.
	OpWriteOwn Operation = "write-own"
	// OpReadOrg covers reads of the caller's clinic data (positions,
	// incoming applications, linked documents).
	OpReadOrg Operation = "read-org"
	// OpWriteOrg covers mutations of the caller's clinic data.
	OpWriteOrg Operation = "write-org"
	// OpAdminAll covers unrestricted administrative access.
	OpAdminAll Operation = "admin-all"
)

// ErrForbidden is returned when the account's role disallows the operation.
// The role check precedes any ownership check: a correctly-scoped request
// from the wrong role is denied before a filter is computed.
var ErrForbidden = errors.New("operation not permitted for role")

// rolePermissions maps each role to the operations it may perform.
var rolePermissions = map[models.Role][]Operation{
	models.RoleStudent: {
		OpReadOwn,
		OpWriteOwn,
	},
	models.RoleClinicAdmin: {
		OpReadOrg,
		OpWriteOrg,
	},
	models.RoleClinicMember: {
		OpReadOrg,
	},
	models.RoleAdmin: {
		OpReadOwn,
		OpWriteOwn,
		OpReadOrg,
		OpWriteOrg,
		OpAdminAll,
	},
}

// Scope is the ownership filter attached to a data query after a decision.
// Unrestricted is set only for admins; otherwise AccountID always names the
// caller, and ClinicID is set for org-scoped operations.
type Scope struct {
	Unrestricted bool
	AccountID    uuid.UUID
	ClinicID     uuid.UUID
}

// Authorize decides whether account may perform op and computes the scope to
// apply. Accounts with no role are denied every operation (the one-time role
// set and the self account read do not go through Authorize; they are the
// only actions open to roleless accounts).
func Authorize(account *models.Account, op Operation) (Scope, error) {
	if account == nil || account.Role == nil {
		return Scope{}, fmt.Errorf("no role assigned: %w", ErrForbidden)
	}

	role := *account.Role
	if role == models.RoleAdmin {
		return Scope{Unrestricted: true, AccountID: account.AccountID}, nil
	}

	if !hasPermission(role, op) {
		return Scope{}, fmt.Errorf("%s cannot perform %s: %w", role, op, ErrForbidden)
	}

	scope := Scope{AccountID: account.AccountID}
	if op == OpReadOrg || op == OpWriteOrg {
		if account.ClinicID == nil {
			return Scope{}, fmt.Errorf("no clinic linked: %w", ErrForbidden)
		}
		scope.ClinicID = *account.ClinicID
	}
	return scope, nil
}

func hasPermission(role models.Role, op Operation) bool {
	for _, p := range rolePermissions[role] {
		if p == op {
			return true
		}
	}
	return false
}
