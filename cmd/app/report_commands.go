package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/inspecta/cmd/app/commands"
	"github.com/allisson/inspecta/internal/app"
	"github.com/allisson/inspecta/internal/config"
)

// defaultWait bounds how long report commands wait for a mutation to settle.
const defaultWait = 30 * time.Second

func inspectionFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "inspection",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "Inspection id",
	}
}

func getReportCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list-reports",
			Usage: "List the reports of an inspection through the cache",
			Flags: []cli.Flag{
				inspectionFlag(),
				&cli.BoolFlag{
					Name:  "refresh",
					Usage: "Reload the reports from the API",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				reportUseCase, err := container.ReportUseCase()
				if err != nil {
					return err
				}

				return commands.RunListReports(
					ctx,
					reportUseCase,
					commands.DefaultIO().Writer,
					cmd.Int64("inspection"),
					cmd.Bool("refresh"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-report",
			Usage: "Create a report and wait until the API confirms it",
			Flags: []cli.Flag{
				inspectionFlag(),
				&cli.StringFlag{
					Name:     "description",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Report description",
				},
				&cli.StringFlag{
					Name:    "status",
					Aliases: []string{"s"},
					Usage:   "Report status: draft, submitted or approved",
				},
				&cli.DurationFlag{
					Name:  "wait",
					Value: defaultWait,
					Usage: "How long to wait for the API to confirm the create",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				reportUseCase, err := container.ReportUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateReport(
					ctx,
					reportUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Int64("inspection"),
					cmd.String("description"),
					cmd.String("status"),
					cmd.Duration("wait"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "delete-report",
			Usage: "Delete a report and wait until the API confirms it",
			Flags: []cli.Flag{
				inspectionFlag(),
				&cli.StringFlag{
					Name:     "id",
					Required: true,
					Usage:    "Report id",
				},
				&cli.DurationFlag{
					Name:  "wait",
					Value: defaultWait,
					Usage: "How long to wait for the API to confirm the delete",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				reportUseCase, err := container.ReportUseCase()
				if err != nil {
					return err
				}

				return commands.RunDeleteReport(
					ctx,
					reportUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Int64("inspection"),
					cmd.String("id"),
					cmd.Duration("wait"),
				)
			},
		},
	}
}
