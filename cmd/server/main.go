package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/medmatch/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag

		Server         commands.ServerCmd         `cmd:"" help:"Start the API server"`
		Migrate        commands.MigrateCmd        `cmd:"" help:"Run database migrations"`
		BootstrapAdmin commands.BootstrapAdminCmd `cmd:"" help:"Grant the admin role to an account"`
		Seed           commands.SeedCmd           `cmd:"" help:"Load fixture data from a YAML file"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
