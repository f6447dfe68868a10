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

// ProfileStore implements store.ProfileStore backed by PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a new PostgreSQL student profile store using the
// shared connection pool.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) Create(ctx context.Context, profile *models.StudentProfile) error {
	query := `
		INSERT INTO student_profiles (profile_id, account_id, university, year_of_study, specialization, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		profile.ProfileID,
		profile.AccountID,
		profile.University,
		profile.YearOfStudy,
		profile.Specialization,
		profile.Phone,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (s *ProfileStore) Get(ctx context.Context, profileID uuid.UUID) (*models.StudentProfile, error) {
	query := `
		SELECT profile_id, account_id, university, year_of_study, specialization, phone, created_at, updated_at
		FROM student_profiles
		WHERE profile_id = $1
	`

	profile, err := scanProfile(s.pool.QueryRow(ctx, query, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

func (s *ProfileStore) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.StudentProfile, error) {
	query := `
		SELECT profile_id, account_id, university, year_of_study, specialization, phone, created_at, updated_at
		FROM student_profiles
		WHERE account_id = $1
	`

	profile, err := scanProfile(s.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by account: %w", err)
	}

	return profile, nil
}

func (s *ProfileStore) Update(ctx context.Context, profile *models.StudentProfile) error {
	query := `
		UPDATE student_profiles
		SET university = $2, year_of_study = $3, specialization = $4, phone = $5, updated_at = NOW()
		WHERE profile_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		profile.ProfileID,
		profile.University,
		profile.YearOfStudy,
		profile.Specialization,
		profile.Phone,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrProfileNotFound
	}

	return nil
}

func (s *ProfileStore) Delete(ctx context.Context, profileID uuid.UUID) error {
	query := `
		DELETE FROM student_profiles
		WHERE profile_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrProfileNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (*models.StudentProfile, error) {
	var profile models.StudentProfile

	err := row.Scan(
		&profile.ProfileID,
		&profile.AccountID,
		&profile.University,
		&profile.YearOfStudy,
		&profile.Specialization,
		&profile.Phone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}
