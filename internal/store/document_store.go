package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
)

// Sentinel errors for document store operations
var (
	ErrDocumentNotFound = errors.New("document not found")
)

// DocumentStore defines the interface for document metadata storage.
// Blob content lives in the blob store; rows here carry the key.
type DocumentStore interface {
	// Create records an uploaded document.
	Create(ctx context.Context, document *models.Document) error

	// Get retrieves a document by ID regardless of owner. This is the
	// admin path; scoped reads go through GetOwned and GetForClinic.
	// Returns ErrDocumentNotFound if the document doesn't exist.
	Get(ctx context.Context, documentID uuid.UUID) (*models.Document, error)

	// GetOwned retrieves a document owned by profileID.
	// Returns ErrDocumentNotFound if no row matches, whether the document is
	// missing or owned by someone else.
	GetOwned(ctx context.Context, documentID, profileID uuid.UUID) (*models.Document, error)

	// GetForClinic retrieves a document whose owning profile has an
	// application against one of clinicID's positions. This is the only
	// cross-tenant read of student documents.
	// Returns ErrDocumentNotFound if no such linkage exists.
	GetForClinic(ctx context.Context, documentID, clinicID uuid.UUID) (*models.Document, error)

	// ListByProfile returns a profile's documents, newest first.
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Document, error)

	// DeleteOwned removes a document owned by profileID and returns the
	// deleted row so the caller can remove the blob.
	// Returns ErrDocumentNotFound if no row matches.
	DeleteOwned(ctx context.Context, documentID, profileID uuid.UUID) (*models.Document, error)
}
