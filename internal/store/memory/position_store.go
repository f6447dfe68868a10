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

// PositionStore is an in-memory implementation of store.PositionStore for
// development and testing.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[uuid.UUID]*models.Position
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		positions: make(map[uuid.UUID]*models.Position),
	}
}

// Create creates a new position.
func (s *PositionStore) Create(ctx context.Context, position *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[position.PositionID] = copyPosition(position)
	return nil
}

// Get retrieves a position by ID regardless of owner.
func (s *PositionStore) Get(ctx context.Context, positionID uuid.UUID) (*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	position, exists := s.positions[positionID]
	if !exists {
		return nil, store.ErrPositionNotFound
	}
	return copyPosition(position), nil
}

// ListActive returns all active positions, newest first.
func (s *PositionStore) ListActive(ctx context.Context) ([]*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Position
	for _, position := range s.positions {
		if position.Status != models.PositionStatusActive {
			continue
		}
		result = append(result, copyPosition(position))
	}
	sortPositions(result)
	return result, nil
}

// ListByClinic returns all of a clinic's positions, newest first.
func (s *PositionStore) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Position
	for _, position := range s.positions {
		if position.ClinicID != clinicID {
			continue
		}
		result = append(result, copyPosition(position))
	}
	sortPositions(result)
	return result, nil
}

// UpdateOwned updates a position if it is owned by clinicID.
func (s *PositionStore) UpdateOwned(ctx context.Context, position *models.Position, clinicID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.positions[position.PositionID]
	if !exists || existing.ClinicID != clinicID {
		return store.ErrPositionNotFound
	}

	updated := copyPosition(position)
	updated.ClinicID = existing.ClinicID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	s.positions[position.PositionID] = updated
	return nil
}

// DeleteOwned deletes a position if it is owned by clinicID.
func (s *PositionStore) DeleteOwned(ctx context.Context, positionID, clinicID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.positions[positionID]
	if !exists || existing.ClinicID != clinicID {
		return store.ErrPositionNotFound
	}
	delete(s.positions, positionID)
	return nil
}

func sortPositions(positions []*models.Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].CreatedAt.After(positions[j].CreatedAt)
	})
}

func copyPosition(position *models.Position) *models.Position {
	c := *position
	c.Requirements = copyStringPtr(position.Requirements)
	return &c
}
