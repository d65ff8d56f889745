// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/guestctl/guestctl/internal/domctl"
)

// IO provides input and output streams for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	app := newApp(cfg, domctl.NewHelperController())

	err := app.RunContext(ctx, args)
	if err != nil {
		slog.Error(err.Error())
		return 1
	}

	return 0
}

func newApp(cfg IO, ctrl domctl.Controller) *cli.App {
	return &cli.App{
		Name:      "guestctl",
		Usage:     "manage guest domains",
		Reader:    cfg.Stdin,
		Writer:    cfg.Stdout,
		ErrWriter: cfg.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			setupLogging(cfg.Stderr, c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			saveCommand(cfg, ctrl),
			restoreCommand(cfg, ctrl),
			migrateCommand(cfg, ctrl),
			migrateReceiveCommand(cfg, ctrl),
			remusCommand(cfg, ctrl),
		},
	}
}

// usageError prints the subcommand help before failing, like a bad flag
// does.
func usageError(c *cli.Context, msg string) error {
	_ = cli.ShowSubcommandHelp(c)

	return cli.Exit(msg, 1)
}
