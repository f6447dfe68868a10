package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/medmatch/internal/logger"
	postgresstore "github.com/wolfeidau/medmatch/internal/store/postgres"
)

type MigrateCmd struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING" required:""`
}

func (c *MigrateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{ConnString: c.ConnString})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := postgresstore.RunMigrations(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Migrations completed")
	return nil
}
