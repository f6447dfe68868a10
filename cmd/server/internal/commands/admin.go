package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/logger"
	"github.com/wolfeidau/medmatch/internal/models"
	"github.com/wolfeidau/medmatch/internal/store"
	postgresstore "github.com/wolfeidau/medmatch/internal/store/postgres"
)

// BootstrapAdminCmd grants the admin role to an account, creating it first
// if the subject has never signed in. This is the way the first admin comes
// to exist; later promotions go through the admin HTTP API.
type BootstrapAdminCmd struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING" required:""`
	Subject    string `help:"identity provider subject of the account" required:""`
	Email      string `help:"email used when the account must be created" default:""`
	Name       string `help:"name used when the account must be created" default:""`
}

func (c *BootstrapAdminCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{ConnString: c.ConnString})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	accounts := postgresstore.NewAccountStore(pool)

	account, err := accounts.GetBySubject(ctx, c.Subject)
	switch {
	case err == nil:

	case errors.Is(err, store.ErrAccountNotFound):
		if c.Email == "" {
			return fmt.Errorf("account %q does not exist, pass --email to create it", c.Subject)
		}

		accountID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		now := time.Now()
		account = &models.Account{
			AccountID: accountID,
			Subject:   c.Subject,
			Email:     c.Email,
			Name:      c.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		log.Info().Str("subject", c.Subject).Msg("Created account")

	default:
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if err := accounts.SetRole(ctx, account.AccountID, models.RoleAdmin, nil); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}

	log.Info().
		Str("account_id", account.AccountID.String()).
		Str("subject", c.Subject).
		Msg("Admin role granted")

	return nil
}
