package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/claims/cmd/app/commands"
	"github.com/allisson/claims/internal/app"
	"github.com/allisson/claims/internal/config"
	"github.com/allisson/claims/internal/httputil"
)

func getClaimCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "get-claim",
			Usage: "Show the owner and registration time of a claim",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "claim",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Hex encoded claim",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registryUseCase, err := commands.OpenRegistry(container)
				if err != nil {
					return err
				}

				return commands.RunGetClaim(
					ctx,
					registryUseCase,
					commands.DefaultIO(),
					cmd.String("claim"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-claims",
			Usage: "List the claims owned by a client",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owner client ID (UUID)",
				},
				&cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "Number of claims to skip",
				},
				&cli.IntFlag{
					Name:  "limit",
					Value: httputil.DefaultPageLimit,
					Usage: "Maximum number of claims to print",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				registryUseCase, err := commands.OpenRegistry(container)
				if err != nil {
					return err
				}

				return commands.RunListClaims(
					ctx,
					registryUseCase,
					commands.DefaultIO(),
					cmd.String("owner"),
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
	}
}
