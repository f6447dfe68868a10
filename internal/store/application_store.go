package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Sentinel errors for application store operations
var (
	ErrApplicationNotFound   = errors.New("application not found")
	ErrDuplicateApplication  = errors.New("application already exists for this position")
	ErrApplicationNotPending = errors.New("application is no longer pending")
)

// ApplicationStore defines the interface for application storage operations.
// Self-service mutations are profile-scoped and conditional on pending
// status; review mutations are scoped to the clinic owning the position.
type ApplicationStore interface {
	// Create creates a new application. The (profile, position) pair is
	// unique; a second application for the same pair returns
	// ErrDuplicateApplication. Returns ErrPositionNotFound if the target
	// position doesn't exist.
	Create(ctx context.Context, application *models.Application) error

	// Get retrieves an application by ID regardless of owner.
	// Returns ErrApplicationNotFound if the application doesn't exist.
	Get(ctx context.Context, applicationID uuid.UUID) (*models.Application, error)

	// ListByProfile returns a profile's applications, newest first.
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Application, error)

	// ListByClinic returns all applications against the clinic's positions,
	// newest first.
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*models.Application, error)

	// UpdateCoverLetter updates the cover letter of the profile's own
	// application, only while the application is pending. The ownership and
	// status checks execute atomically with the write.
	// Returns ErrApplicationNotFound if the profile owns no such
	// application, ErrApplicationNotPending if it has left pending.
	UpdateCoverLetter(ctx context.Context, applicationID, profileID uuid.UUID, coverLetter *string) error

	// DeletePending withdraws the profile's own application, only while it
	// is pending. Same error contract as UpdateCoverLetter.
	DeletePending(ctx context.Context, applicationID, profileID uuid.UUID) error

	// SetStatus records a review decision on an application against one of
	// clinicID's positions, setting the status, reviewer notes and review
	// time in one conditional write.
	// Returns ErrApplicationNotFound if no application matches the
	// (application, clinic) pair.
	SetStatus(ctx context.Context, applicationID, clinicID uuid.UUID, status models.ApplicationStatus, notes *string, reviewedAt time.Time) error
}
