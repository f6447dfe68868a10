package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// ApplicationStore is an in-memory implementation of store.ApplicationStore
// for development and testing. It holds a reference to the position store to
// answer the clinic-scoped queries postgres expresses as joins.
type ApplicationStore struct {
	mu           sync.RWMutex
	applications map[uuid.UUID]*models.Application
	byPair       map[pairKey]uuid.UUID

	positions *PositionStore
}

type pairKey struct {
	profileID  uuid.UUID
	positionID uuid.UUID
}

// NewApplicationStore creates a new in-memory application store backed by
// the given position store.
func NewApplicationStore(positions *PositionStore) *ApplicationStore {
	return &ApplicationStore{
		applications: make(map[uuid.UUID]*models.Application),
		byPair:       make(map[pairKey]uuid.UUID),
		positions:    positions,
	}
}

// Create creates a new application.
func (s *ApplicationStore) Create(ctx context.Context, application *models.Application) error {
	if _, err := s.positions.Get(ctx, application.PositionID); err != nil {
		return store.ErrPositionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{profileID: application.ProfileID, positionID: application.PositionID}
	if _, exists := s.byPair[key]; exists {
		return store.ErrDuplicateApplication
	}

	s.applications[application.ApplicationID] = copyApplication(application)
	s.byPair[key] = application.ApplicationID
	return nil
}

// Get retrieves an application by ID regardless of owner.
func (s *ApplicationStore) Get(ctx context.Context, applicationID uuid.UUID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	application, exists := s.applications[applicationID]
	if !exists {
		return nil, store.ErrApplicationNotFound
	}
	return copyApplication(application), nil
}

// ListByProfile returns a profile's applications, newest first.
func (s *ApplicationStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Application
	for _, application := range s.applications {
		if application.ProfileID != profileID {
			continue
		}
		result = append(result, copyApplication(application))
	}
	sortApplications(result)
	return result, nil
}

// ListByClinic returns all applications against the clinic's positions,
// newest first.
func (s *ApplicationStore) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*models.Application, error) {
	positions, err := s.positions.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	owned := make(map[uuid.UUID]bool, len(positions))
	for _, position := range positions {
		owned[position.PositionID] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Application
	for _, application := range s.applications {
		if !owned[application.PositionID] {
			continue
		}
		result = append(result, copyApplication(application))
	}
	sortApplications(result)
	return result, nil
}

// UpdateCoverLetter updates the cover letter of a pending application owned
// by profileID.
func (s *ApplicationStore) UpdateCoverLetter(ctx context.Context, applicationID, profileID uuid.UUID, coverLetter *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	application, exists := s.applications[applicationID]
	if !exists || application.ProfileID != profileID {
		return store.ErrApplicationNotFound
	}
	if application.Status != models.ApplicationStatusPending {
		return store.ErrApplicationNotPending
	}

	application.CoverLetter = copyStringPtr(coverLetter)
	return nil
}

// DeletePending withdraws a pending application owned by profileID.
func (s *ApplicationStore) DeletePending(ctx context.Context, applicationID, profileID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	application, exists := s.applications[applicationID]
	if !exists || application.ProfileID != profileID {
		return store.ErrApplicationNotFound
	}
	if application.Status != models.ApplicationStatusPending {
		return store.ErrApplicationNotPending
	}

	delete(s.byPair, pairKey{profileID: application.ProfileID, positionID: application.PositionID})
	delete(s.applications, applicationID)
	return nil
}

// SetStatus records a review decision on an application against one of
// clinicID's positions.
func (s *ApplicationStore) SetStatus(ctx context.Context, applicationID, clinicID uuid.UUID, status models.ApplicationStatus, notes *string, reviewedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	application, exists := s.applications[applicationID]
	if !exists {
		return store.ErrApplicationNotFound
	}

	position, err := s.positions.Get(ctx, application.PositionID)
	if err != nil || position.ClinicID != clinicID {
		return store.ErrApplicationNotFound
	}

	application.Status = status
	application.Notes = copyStringPtr(notes)
	application.ReviewedAt = copyTimePtr(&reviewedAt)
	return nil
}

func sortApplications(applications []*models.Application) {
	sort.Slice(applications, func(i, j int) bool {
		return applications[i].AppliedAt.After(applications[j].AppliedAt)
	})
}

func copyApplication(application *models.Application) *models.Application {
	c := *application
	c.CoverLetter = copyStringPtr(application.CoverLetter)
	c.Notes = copyStringPtr(application.Notes)
	c.ReviewedAt = copyTimePtr(application.ReviewedAt)
	return &c
}
