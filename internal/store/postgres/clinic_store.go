package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// ClinicStore implements store.ClinicStore backed by PostgreSQL.
type ClinicStore struct {
	pool *pgxpool.Pool
}

// NewClinicStore creates a new PostgreSQL clinic store using the shared
// connection pool.
func NewClinicStore(pool *pgxpool.Pool) *ClinicStore {
	return &ClinicStore{pool: pool}
}

func (s *ClinicStore) Create(ctx context.Context, clinic *models.Clinic) error {
	query := `
		INSERT INTO clinics (clinic_id, name, department, address, contact_person, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		clinic.ClinicID,
		clinic.Name,
		clinic.Department,
		clinic.Address,
		clinic.ContactPerson,
		clinic.Phone,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrClinicAlreadyExists
		}
		return fmt.Errorf("failed to create clinic: %w", err)
	}

	return nil
}

func (s *ClinicStore) Get(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	query := `
		SELECT clinic_id, name, department, address, contact_person, phone, created_at, updated_at
		FROM clinics
		WHERE clinic_id = $1
	`

	var clinic models.Clinic
	err := s.pool.QueryRow(ctx, query, clinicID).Scan(
		&clinic.ClinicID,
		&clinic.Name,
		&clinic.Department,
		&clinic.Address,
		&clinic.ContactPerson,
		&clinic.Phone,
		&clinic.CreatedAt,
		&clinic.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrClinicNotFound
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	return &clinic, nil
}

func (s *ClinicStore) Update(ctx context.Context, clinic *models.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $2, department = $3, address = $4, contact_person = $5, phone = $6, updated_at = NOW()
		WHERE clinic_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		clinic.ClinicID,
		clinic.Name,
		clinic.Department,
		clinic.Address,
		clinic.ContactPerson,
		clinic.Phone,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrClinicNotFound
	}

	return nil
}

func (s *ClinicStore) Delete(ctx context.Context, clinicID uuid.UUID) error {
	query := `
		DELETE FROM clinics
		WHERE clinic_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrClinicNotFound
	}

	return nil
}
