package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/claims/cmd/app/commands"
	"github.com/allisson/claims/internal/app"
	"github.com/allisson/claims/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and the block producer",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "outbox-worker",
			Usage: "Deliver committed claim notifications from the outbox",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunOutboxWorker(ctx)
			},
		},
	}
}
