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

// AccountStore implements store.AccountStore backed by PostgreSQL.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates a new PostgreSQL account store using the shared
// connection pool.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (account_id, subject, email, name, role, clinic_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		account.AccountID,
		account.Subject,
		account.Email,
		account.Name,
		roleToText(account.Role),
		account.ClinicID,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (s *AccountStore) Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	query := `
		SELECT account_id, subject, email, name, role, clinic_id, created_at, updated_at
		FROM accounts
		WHERE account_id = $1
	`

	account, err := scanAccount(s.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

func (s *AccountStore) GetBySubject(ctx context.Context, subject string) (*models.Account, error) {
	query := `
		SELECT account_id, subject, email, name, role, clinic_id, created_at, updated_at
		FROM accounts
		WHERE subject = $1
	`

	account, err := scanAccount(s.pool.QueryRow(ctx, query, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by subject: %w", err)
	}

	return account, nil
}

func (s *AccountStore) SetRoleOnce(ctx context.Context, accountID uuid.UUID, role models.Role, clinicID *uuid.UUID) error {
	// Single conditional update so concurrent first-sets cannot both win.
	query := `
		UPDATE accounts
		SET role = $2, clinic_id = $3, updated_at = NOW()
		WHERE account_id = $1 AND role IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, accountID, string(role), clinicID)
	if err != nil {
		return fmt.Errorf("failed to set account role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing account from one whose role is taken.
		var exists bool
		err = s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = $1)`, accountID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check account existence: %w", err)
		}
		if !exists {
			return store.ErrAccountNotFound
		}
		return store.ErrRoleAlreadySet
	}

	return nil
}

func (s *AccountStore) SetRole(ctx context.Context, accountID uuid.UUID, role models.Role, clinicID *uuid.UUID) error {
	query := `
		UPDATE accounts
		SET role = $2, clinic_id = $3, updated_at = NOW()
		WHERE account_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, accountID, string(role), clinicID)
	if err != nil {
		return fmt.Errorf("failed to set account role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrAccountNotFound
	}

	return nil
}

func (s *AccountStore) List(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT account_id, subject, email, name, role, clinic_id, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

func (s *AccountStore) Delete(ctx context.Context, accountID uuid.UUID) error {
	query := `
		DELETE FROM accounts
		WHERE account_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.ErrAccountNotFound
	}

	return nil
}

// scanAccount scans an account row from the standard column order.
func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	var role *string

	err := row.Scan(
		&account.AccountID,
		&account.Subject,
		&account.Email,
		&account.Name,
		&role,
		&account.ClinicID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if role != nil {
		r := models.Role(*role)
		account.Role = &r
	}

	return &account, nil
}

// roleToText converts an optional role to its nullable column value.
func roleToText(role *models.Role) *string {
	if role == nil {
		return nil
	}
	s := string(*role)
	return &s
}
