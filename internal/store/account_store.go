package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Sentinel errors for account store operations
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrRoleAlreadySet       = errors.New("account role already set")
)

// AccountStore defines the interface for account storage operations.
// Accounts are created on first authenticated contact and keyed by the
// identity provider's stable subject.
type AccountStore interface {
	// Create creates a new account.
	// Returns ErrAccountAlreadyExists if the subject is already registered.
	Create(ctx context.Context, account *models.Account) error

	// Get retrieves an account by ID.
	// Returns ErrAccountNotFound if the account doesn't exist.
	Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error)

	// GetBySubject retrieves an account by the identity provider subject.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetBySubject(ctx context.Context, subject string) (*models.Account, error)

	// SetRoleOnce assigns the account's role if and only if no role has been
	// set yet, optionally linking the account to a clinic. The check and the
	// write execute as a single conditional update so concurrent first-sets
	// cannot race.
	// Returns ErrRoleAlreadySet if a role is already stored, and
	// ErrAccountNotFound if the account doesn't exist.
	SetRoleOnce(ctx context.Context, accountID uuid.UUID, role models.Role, clinicID *uuid.UUID) error

	// SetRole unconditionally assigns the account's role and clinic link.
	// This is the admin path; self-service role changes go through
	// SetRoleOnce.
	// Returns ErrAccountNotFound if the account doesn't exist.
	SetRole(ctx context.Context, accountID uuid.UUID, role models.Role, clinicID *uuid.UUID) error

	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*models.Account, error)

	// Delete removes an account.
	// Returns ErrAccountNotFound if the account doesn't exist.
	Delete(ctx context.Context, accountID uuid.UUID) error
}
