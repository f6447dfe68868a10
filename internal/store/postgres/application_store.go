package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
)

// ApplicationStore implements store.ApplicationStore backed by PostgreSQL.
type ApplicationStore struct {
	pool *pgxpool.Pool
}

// NewApplicationStore creates a new PostgreSQL application store using the
// shared connection pool.
func NewApplicationStore(pool *pgxpool.Pool) *ApplicationStore {
	return &ApplicationStore{pool: pool}
}

func (s *ApplicationStore) Create(ctx context.Context, application *models.Application) error {
	// The UNIQUE (profile_id, position_id) constraint enforces one
	// application per pair under concurrency.
	query := `
		INSERT INTO applications (application_id, profile_id, position_id, cover_letter, status, applied_at, reviewed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		application.ApplicationID,
		application.ProfileID,
		application.PositionID,
		application.CoverLetter,
		string(application.Status),
		application.AppliedAt,
		application.ReviewedAt,
		application.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateApplication
		}
		if isForeignKeyViolation(err) {
			return store.ErrPositionNotFound
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (s *ApplicationStore) Get(ctx context.Context, applicationID uuid.UUID) (*models.Application, error) {
	query := `
		SELECT application_id, profile_id, position_id, cover_letter, status, applied_at, reviewed_at, notes
		FROM applications
		WHERE application_id = $1
	`

	application, err := scanApplication(s.pool.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return application, nil
}

func (s *ApplicationStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Application, error) {
	query := `
		SELECT application_id, profile_id, position_id, cover_letter, status, applied_at, reviewed_at, notes
		FROM applications
		WHERE profile_id = $1
		ORDER BY applied_at DESC
	`

	return s.queryApplications(ctx, query, profileID)
}

func (s *ApplicationStore) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*models.Application, error) {
	query := `
		SELECT a.application_id, a.profile_id, a.position_id, a.cover_letter, a.status, a.applied_at, a.reviewed_at, a.notes
		FROM applications a
		JOIN positions p ON p.position_id = a.position_id
		WHERE p.clinic_id = $1
		ORDER BY a.applied_at DESC
	`

	return s.queryApplications(ctx, query, clinicID)
}

func (s *ApplicationStore) UpdateCoverLetter(ctx context.Context, applicationID, profileID uuid.UUID, coverLetter *string) error {
	// Ownership and pending status are part of the conditional write.
	query := `
		UPDATE applications
		SET cover_letter = $3
		WHERE application_id = $1 AND profile_id = $2 AND status = 'pending'
	`

	tag, err := s.pool.Exec(ctx, query, applicationID, profileID, coverLetter)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return s.classifyMiss(ctx, applicationID, profileID)
	}

	return nil
}

func (s *ApplicationStore) DeletePending(ctx context.Context, applicationID, profileID uuid.UUID) error {
	query := `
		DELETE FROM applications
		WHERE application_id = $1 AND profile_id = $2 AND status = 'pending'
	`

	tag, err := s.pool.Exec(ctx, query, applicationID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return s.classifyMiss(ctx, applicationID, profileID)
	}

	return nil
}

func (s *ApplicationStore) SetStatus(ctx context.Context, applicationID, clinicID uuid.UUID, status models.ApplicationStatus, notes *string, reviewedAt time.Time) error {
	// The clinic scope is joined into the write so a review against another
	// clinic's application changes nothing.
	query := `
		UPDATE applications a
		SET status = $3, notes = $4, reviewed_at = $5
		FROM positions p
		WHERE a.application_id = $1
			AND p.position_id = a.position_id
			AND p.clinic_id = $2
	`

	tag, err := s.pool.Exec(ctx, query, applicationID, clinicID, string(status), notes, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to set application status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrApplicationNotFound
	}

	return nil
}

// classifyMiss distinguishes a missing or foreign application from one the
// profile owns but can no longer edit.
func (s *ApplicationStore) classifyMiss(ctx context.Context, applicationID, profileID uuid.UUID) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications WHERE application_id = $1 AND profile_id = $2
		)
	`, applicationID, profileID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}

	if !exists {
		return store.ErrApplicationNotFound
	}
	return store.ErrApplicationNotPending
}

func (s *ApplicationStore) queryApplications(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var applications []*models.Application
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		applications = append(applications, application)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}

	return applications, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var application models.Application
	var status string

	err := row.Scan(
		&application.ApplicationID,
		&application.ProfileID,
		&application.PositionID,
		&application.CoverLetter,
		&status,
		&application.AppliedAt,
		&application.ReviewedAt,
		&application.Notes,
	)
	if err != nil {
		return nil, err
	}

	application.Status = models.ApplicationStatus(status)
	return &application, nil
}
