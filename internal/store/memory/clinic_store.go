package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// ClinicStore is an in-memory implementation of store.ClinicStore for
// development and testing.
type ClinicStore struct {
	mu      sync.RWMutex
	clinics map[uuid.UUID]*models.Clinic
}

// NewClinicStore creates a new in-memory clinic store.
func NewClinicStore() *ClinicStore {
	return &ClinicStore{
		clinics: make(map[uuid.UUID]*models.Clinic),
	}
}

// Create creates a new clinic.
func (s *ClinicStore) Create(ctx context.Context, clinic *models.Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clinics[clinic.ClinicID]; exists {
		return store.ErrClinicAlreadyExists
	}
	s.clinics[clinic.ClinicID] = copyClinic(clinic)
	return nil
}

// Get retrieves a clinic by ID.
func (s *ClinicStore) Get(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clinic, exists := s.clinics[clinicID]
	if !exists {
		return nil, store.ErrClinicNotFound
	}
	return copyClinic(clinic), nil
}

// Update updates an existing clinic.
func (s *ClinicStore) Update(ctx context.Context, clinic *models.Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.clinics[clinic.ClinicID]
	if !exists {
		return store.ErrClinicNotFound
	}

	updated := copyClinic(clinic)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	s.clinics[clinic.ClinicID] = updated
	return nil
}

// Delete removes a clinic.
func (s *ClinicStore) Delete(ctx context.Context, clinicID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clinics[clinicID]; !exists {
		return store.ErrClinicNotFound
	}
	delete(s.clinics, clinicID)
	return nil
}

func copyClinic(clinic *models.Clinic) *models.Clinic {
	c := *clinic
	c.Department = copyStringPtr(clinic.Department)
	c.Address = copyStringPtr(clinic.Address)
	c.ContactPerson = copyStringPtr(clinic.ContactPerson)
	c.Phone = copyStringPtr(clinic.Phone)
	return &c
}
