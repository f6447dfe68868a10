package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// DocumentStore is an in-memory implementation of store.DocumentStore for
// development and testing. It holds a reference to the application store to
// answer the clinic-linkage query postgres expresses as a join.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]*models.Document

	applications *ApplicationStore
}

// NewDocumentStore creates a new in-memory document store backed by the
// given application store.
func NewDocumentStore(applications *ApplicationStore) *DocumentStore {
	return &DocumentStore{
		documents:    make(map[uuid.UUID]*models.Document),
		applications: applications,
	}
}

// Create records an uploaded document.
func (s *DocumentStore) Create(ctx context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[document.DocumentID] = copyDocument(document)
	return nil
}

// Get retrieves a document by ID regardless of owner.
func (s *DocumentStore) Get(ctx context.Context, documentID uuid.UUID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	document, exists := s.documents[documentID]
	if !exists {
		return nil, store.ErrDocumentNotFound
	}
	return copyDocument(document), nil
}

// GetOwned retrieves a document owned by profileID.
func (s *DocumentStore) GetOwned(ctx context.Context, documentID, profileID uuid.UUID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	document, exists := s.documents[documentID]
	if !exists || document.ProfileID != profileID {
		return nil, store.ErrDocumentNotFound
	}
	return copyDocument(document), nil
}

// GetForClinic retrieves a document whose owning profile has an application
// against one of clinicID's positions.
func (s *DocumentStore) GetForClinic(ctx context.Context, documentID, clinicID uuid.UUID) (*models.Document, error) {
	s.mu.RLock()
	document, exists := s.documents[documentID]
	if !exists {
		s.mu.RUnlock()
		return nil, store.ErrDocumentNotFound
	}
	document = copyDocument(document)
	s.mu.RUnlock()

	applications, err := s.applications.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	for _, application := range applications {
		if application.ProfileID == document.ProfileID {
			return document, nil
		}
	}
	return nil, store.ErrDocumentNotFound
}

// ListByProfile returns a profile's documents, newest first.
func (s *DocumentStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Document
	for _, document := range s.documents {
		if document.ProfileID != profileID {
			continue
		}
		result = append(result, copyDocument(document))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result, nil
}

// DeleteOwned removes a document owned by profileID and returns the deleted
// row.
func (s *DocumentStore) DeleteOwned(ctx context.Context, documentID, profileID uuid.UUID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	document, exists := s.documents[documentID]
	if !exists || document.ProfileID != profileID {
		return nil, store.ErrDocumentNotFound
	}
	delete(s.documents, documentID)
	return copyDocument(document), nil
}

func copyDocument(document *models.Document) *models.Document {
	c := *document
	return &c
}
