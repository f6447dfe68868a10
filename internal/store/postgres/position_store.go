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

// PositionStore implements store.PositionStore backed by PostgreSQL.
type PositionStore struct {
	pool *pgxpool.Pool
}

// NewPositionStore creates a new PostgreSQL position store using the shared
// connection pool.
func NewPositionStore(pool *pgxpool.Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

func (s *PositionStore) Create(ctx context.Context, position *models.Position) error {
	query := `
		INSERT INTO positions (position_id, clinic_id, title, description, specialty, duration_months,
			start_date, application_deadline, requirements, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		position.PositionID,
		position.ClinicID,
		position.Title,
		position.Description,
		position.Specialty,
		position.DurationMonths,
		position.StartDate,
		position.ApplicationDeadline,
		position.Requirements,
		string(position.Status),
		position.CreatedAt,
		position.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}

	return nil
}

func (s *PositionStore) Get(ctx context.Context, positionID uuid.UUID) (*models.Position, error) {
	query := `
		SELECT position_id, clinic_id, title, description, specialty, duration_months,
			start_date, application_deadline, requirements, status, created_at, updated_at
		FROM positions
		WHERE position_id = $1
	`

	position, err := scanPosition(s.pool.QueryRow(ctx, query, positionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPositionNotFound
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	return position, nil
}

func (s *PositionStore) ListActive(ctx context.Context) ([]*models.Position, error) {
	query := `
		SELECT position_id, clinic_id, title, description, specialty, duration_months,
			start_date, application_deadline, requirements, status, created_at, updated_at
		FROM positions
		WHERE status = 'active'
		ORDER BY created_at DESC
	`

	return s.queryPositions(ctx, query)
}

func (s *PositionStore) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*models.Position, error) {
	query := `
		SELECT position_id, clinic_id, title, description, specialty, duration_months,
			start_date, application_deadline, requirements, status, created_at, updated_at
		FROM positions
		WHERE clinic_id = $1
		ORDER BY created_at DESC
	`

	return s.queryPositions(ctx, query, clinicID)
}

func (s *PositionStore) UpdateOwned(ctx context.Context, position *models.Position, clinicID uuid.UUID) error {
	// Ownership is part of the conditional write, so a mismatch and a
	// missing row are indistinguishable.
	query := `
		UPDATE positions
		SET title = $3, description = $4, specialty = $5, duration_months = $6,
			start_date = $7, application_deadline = $8, requirements = $9, status = $10,
			updated_at = NOW()
		WHERE position_id = $1 AND clinic_id = $2
	`

	tag, err := s.pool.Exec(ctx, query,
		position.PositionID,
		clinicID,
		position.Title,
		position.Description,
		position.Specialty,
		position.DurationMonths,
		position.StartDate,
		position.ApplicationDeadline,
		position.Requirements,
		string(position.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrPositionNotFound
	}

	return nil
}

func (s *PositionStore) DeleteOwned(ctx context.Context, positionID, clinicID uuid.UUID) error {
	query := `
		DELETE FROM positions
		WHERE position_id = $1 AND clinic_id = $2
	`

	tag, err := s.pool.Exec(ctx, query, positionID, clinicID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrPositionNotFound
	}

	return nil
}

func (s *PositionStore) queryPositions(ctx context.Context, query string, args ...any) ([]*models.Position, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}

func scanPosition(row pgx.Row) (*models.Position, error) {
	var position models.Position
	var status string

	err := row.Scan(
		&position.PositionID,
		&position.ClinicID,
		&position.Title,
		&position.Description,
		&position.Specialty,
		&position.DurationMonths,
		&position.StartDate,
		&position.ApplicationDeadline,
		&position.Requirements,
		&status,
		&position.CreatedAt,
		&position.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	position.Status = models.PositionStatus(status)
	return &position, nil
}
