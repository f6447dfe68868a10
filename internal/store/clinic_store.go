package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Sentinel errors for clinic store operations
var (
	ErrClinicNotFound      = errors.New("clinic not found")
	ErrClinicAlreadyExists = errors.New("clinic already exists")
)

// ClinicStore defines the interface for clinic storage operations.
// Clinics are tenants: accounts with a clinic role reference exactly one
// clinic, and positions belong to exactly one clinic.
type ClinicStore interface {
	// Create creates a new clinic.
	// Returns ErrClinicAlreadyExists if a clinic with the same ID exists.
	Create(ctx context.Context, clinic *models.Clinic) error

	// Get retrieves a clinic by ID.
	// Returns ErrClinicNotFound if the clinic doesn't exist.
	Get(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error)

	// Update updates an existing clinic.
	// Returns ErrClinicNotFound if the clinic doesn't exist.
	Update(ctx context.Context, clinic *models.Clinic) error

	// Delete removes a clinic. Positions owned by the clinic are removed by
	// cascade; member accounts keep their rows with the clinic link cleared.
	// Returns ErrClinicNotFound if the clinic doesn't exist.
	Delete(ctx context.Context, clinicID uuid.UUID) error
}
