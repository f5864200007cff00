package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getAccessCommands()...)
	cmds = append(cmds, getReportCommands()...)
	return cmds
}

// userFlags identify the user a command acts for.
func userFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Value:   "cli",
			Usage:   "User id",
		},
		&cli.StringSliceFlag{
			Name:    "role",
			Aliases: []string{"r"},
			Usage:   "Role granted to the user (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "permission",
			Aliases: []string{"p"},
			Usage:   "Permission granted to the user as resource:action (repeatable)",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
