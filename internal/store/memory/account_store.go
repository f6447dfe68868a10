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

// AccountStore is an in-memory implementation of store.AccountStore for
// development and testing.
type AccountStore struct {
	mu         sync.RWMutex
	accounts   map[uuid.UUID]*models.Account
	bySubject  map[string]uuid.UUID
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:  make(map[uuid.UUID]*models.Account),
		bySubject: make(map[string]uuid.UUID),
	}
}

// Create creates a new account.
func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySubject[account.Subject]; exists {
		return store.ErrAccountAlreadyExists
	}
	if _, exists := s.accounts[account.AccountID]; exists {
		return store.ErrAccountAlreadyExists
	}

	s.accounts[account.AccountID] = copyAccount(account)
	s.bySubject[account.Subject] = account.AccountID
	return nil
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return nil, store.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

// GetBySubject retrieves an account by the identity provider subject.
func (s *AccountStore) GetBySubject(ctx context.Context, subject string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, exists := s.bySubject[subject]
	if !exists {
		return nil, store.ErrAccountNotFound
	}
	return copyAccount(s.accounts[accountID]), nil
}

// SetRoleOnce assigns the role only if no role has been set yet.
func (s *AccountStore) SetRoleOnce(ctx context.Context, accountID uuid.UUID, role models.Role, clinicID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return store.ErrAccountNotFound
	}
	if account.Role != nil {
		return store.ErrRoleAlreadySet
	}

	r := role
	account.Role = &r
	account.ClinicID = copyUUIDPtr(clinicID)
	account.UpdatedAt = time.Now()
	return nil
}

// SetRole unconditionally assigns the role and clinic link.
func (s *AccountStore) SetRole(ctx context.Context, accountID uuid.UUID, role models.Role, clinicID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return store.ErrAccountNotFound
	}

	r := role
	account.Role = &r
	account.ClinicID = copyUUIDPtr(clinicID)
	account.UpdatedAt = time.Now()
	return nil
}

// List returns all accounts, newest first.
func (s *AccountStore) List(ctx context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		result = append(result, copyAccount(account))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes an account.
func (s *AccountStore) Delete(ctx context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return store.ErrAccountNotFound
	}
	delete(s.bySubject, account.Subject)
	delete(s.accounts, accountID)
	return nil
}

func copyAccount(account *models.Account) *models.Account {
	c := *account
	if account.Role != nil {
		r := *account.Role
		c.Role = &r
	}
	c.ClinicID = copyUUIDPtr(account.ClinicID)
	return &c
}

func copyUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
