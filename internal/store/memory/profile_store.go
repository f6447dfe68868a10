package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// ProfileStore is an in-memory implementation of store.ProfileStore for
// development and testing.
type ProfileStore struct {
	mu        sync.RWMutex
	profiles  map[uuid.UUID]*models.StudentProfile
	byAccount map[uuid.UUID]uuid.UUID
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles:  make(map[uuid.UUID]*models.StudentProfile),
		byAccount: make(map[uuid.UUID]uuid.UUID),
	}
}

// Create creates a new student profile.
func (s *ProfileStore) Create(ctx context.Context, profile *models.StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAccount[profile.AccountID]; exists {
		return store.ErrProfileAlreadyExists
	}

	s.profiles[profile.ProfileID] = copyProfile(profile)
	s.byAccount[profile.AccountID] = profile.ProfileID
	return nil
}

// Get retrieves a profile by ID.
func (s *ProfileStore) Get(ctx context.Context, profileID uuid.UUID) (*models.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[profileID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}
	return copyProfile(profile), nil
}

// GetByAccount retrieves the profile belonging to an account.
func (s *ProfileStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profileID, exists := s.byAccount[accountID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}
	return copyProfile(s.profiles[profileID]), nil
}

// Update updates an existing profile.
func (s *ProfileStore) Update(ctx context.Context, profile *models.StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.profiles[profile.ProfileID]
	if !exists {
		return store.ErrProfileNotFound
	}

	updated := copyProfile(profile)
	updated.AccountID = existing.AccountID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	s.profiles[profile.ProfileID] = updated
	return nil
}

// Delete removes a profile.
func (s *ProfileStore) Delete(ctx context.Context, profileID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, exists := s.profiles[profileID]
	if !exists {
		return store.ErrProfileNotFound
	}
	delete(s.byAccount, profile.AccountID)
	delete(s.profiles, profileID)
	return nil
}

func copyProfile(profile *models.StudentProfile) *models.StudentProfile {
	c := *profile
	c.Specialization = copyStringPtr(profile.Specialization)
	c.Phone = copyStringPtr(profile.Phone)
	return &c
}
