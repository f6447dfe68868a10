package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Sentinel errors for position store operations
var (
	ErrPositionNotFound = errors.New("position not found")
)

// PositionStore defines the interface for position storage operations.
// Mutations are clinic-scoped: the owning clinic ID is part of the
// conditional write, so a mismatch and a missing row are indistinguishable.
type PositionStore interface {
	// Create creates a new position owned by position.ClinicID.
	Create(ctx context.Context, position *models.Position) error

	// Get retrieves a position by ID regardless of owner.
	// Returns ErrPositionNotFound if the position doesn't exist.
	Get(ctx context.Context, positionID uuid.UUID) (*models.Position, error)

	// ListActive returns all active positions, newest first. This is the
	// browse view available to every authenticated role.
	ListActive(ctx context.Context) ([]*models.Position, error)

	// ListByClinic returns all of a clinic's positions in every status,
	// newest first.
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*models.Position, error)

	// UpdateOwned updates a position if and only if it is owned by clinicID.
	// Returns ErrPositionNotFound if no row matches.
	UpdateOwned(ctx context.Context, position *models.Position, clinicID uuid.UUID) error

	// DeleteOwned deletes a position if and only if it is owned by clinicID.
	// Returns ErrPositionNotFound if no row matches.
	DeleteOwned(ctx context.Context, positionID, clinicID uuid.UUID) error
}
