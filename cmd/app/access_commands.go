package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/inspecta/cmd/app/commands"
	"github.com/allisson/inspecta/internal/app"
	"github.com/allisson/inspecta/internal/config"
)

func getAccessCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-token",
			Usage: "Sign a development access token with AUTH_JWT_SECRET",
			Flags: append(userFlags(),
				&cli.DurationFlag{
					Name:    "ttl",
					Aliases: []string{"t"},
					Usage:   "Token lifetime (defaults to AUTH_TOKEN_EXPIRATION_SECONDS)",
				},
				formatFlag(),
			),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()

				ttl := cmd.Duration("ttl")
				if ttl <= 0 {
					ttl = cfg.AuthTokenExpiration
				}

				return commands.RunIssueToken(
					commands.DefaultIO().Writer,
					commands.TokenConfig{
						Secret: cfg.AuthJWTSecret,
						Issuer: cfg.AuthJWTIssuer,
						TTL:    ttl,
					},
					cmd.String("user"),
					cmd.StringSlice("role"),
					cmd.StringSlice("permission"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "evaluate",
			Usage: "Evaluate an access requirement for a user",
			Flags: append(userFlags(),
				&cli.StringFlag{
					Name:     "require",
					Aliases:  []string{"q"},
					Required: true,
					Usage:    `Requirement as JSON, e.g. {"permission":"psv:read"}`,
				},
				&cli.BoolFlag{
					Name:  "anonymous",
					Usage: "Evaluate without a user, as a visitor who has not logged in",
				},
				formatFlag(),
			),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				guardUseCase, err := container.GuardUseCase()
				if err != nil {
					return err
				}
				userID, roles, permissions := userArgs(cmd)

				return commands.RunEvaluate(
					ctx,
					guardUseCase,
					commands.DefaultIO().Writer,
					userID,
					roles,
					permissions,
					cmd.String("require"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "routes",
			Usage: "List the guarded routes and whether a user may open them",
			Flags: append(userFlags(),
				&cli.BoolFlag{
					Name:    "nav",
					Aliases: []string{"n"},
					Usage:   "Only show the navigation entries the user may open",
				},
				&cli.BoolFlag{
					Name:  "anonymous",
					Usage: "Evaluate without a user, as a visitor who has not logged in",
				},
				formatFlag(),
			),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				guardUseCase, err := container.GuardUseCase()
				if err != nil {
					return err
				}
				userID, roles, permissions := userArgs(cmd)

				return commands.RunRoutes(
					ctx,
					guardUseCase,
					commands.DefaultIO().Writer,
					userID,
					roles,
					permissions,
					cmd.Bool("nav"),
					cmd.String("format"),
				)
			},
		},
	}
}

// userArgs reads the user flags; --anonymous drops them all.
func userArgs(cmd *cli.Command) (string, []string, []string) {
	if cmd.Bool("anonymous") {
		return "", nil, nil
	}
	return cmd.String("user"), cmd.StringSlice("role"), cmd.StringSlice("permission")
}
