package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Sentinel errors for profile store operations
var (
	ErrProfileNotFound      = errors.New("student profile not found")
	ErrProfileAlreadyExists = errors.New("student profile already exists")
)

// ProfileStore defines the interface for student profile storage operations.
// Lookups never create a profile as a side effect; creation is an explicit
// call made by the profile write path.
type ProfileStore interface {
	// Create creates a new student profile.
	// Returns ErrProfileAlreadyExists if the account already has one.
	Create(ctx context.Context, profile *models.StudentProfile) error

	// Get retrieves a profile by ID.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Get(ctx context.Context, profileID uuid.UUID) (*models.StudentProfile, error)

	// GetByAccount retrieves the profile belonging to an account.
	// Returns ErrProfileNotFound if the account has no profile.
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.StudentProfile, error)

	// Update updates an existing profile.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Update(ctx context.Context, profile *models.StudentProfile) error

	// Delete removes a profile. Documents and applications owned by the
	// profile are removed by cascade.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Delete(ctx context.Context, profileID uuid.UUID) error
}
