// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/migration"
)

func saveCommand(cfg IO, ctrl domctl.Controller) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "save a domain state to restore later",
		ArgsUsage: "<domain> <file> [config]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "checkpoint",
				Aliases: []string{"c"},
				Usage:   "leave domain running after creating the snapshot",
			},
			&cli.BoolFlag{
				Name:    "pause",
				Aliases: []string{"p"},
				Usage:   "leave domain paused after creating the snapshot",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 || c.NArg() > 3 {
				return usageError(c, "save needs a domain and a file")
			}

			return migration.Save(
				c.Context,
				ctrl,
				c.Args().Get(0),
				c.Args().Get(1),
				migration.SaveOptions{
					OverrideConfigPath: c.Args().Get(2),
					Checkpoint:         c.Bool("checkpoint"),
					LeavePaused:        c.Bool("pause"),
					Stderr:             cfg.Stderr,
				},
			)
		},
	}
}

func restoreCommand(_ IO, ctrl domctl.Controller) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "restore a domain from a saved state",
		ArgsUsage: "[config] <file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "pause",
				Aliases: []string{"p"},
				Usage:   "do not unpause domain after restoring it",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "enable debug messages in the restore stream",
			},
		},
		Action: func(c *cli.Context) error {
			var overridePath, path string

			switch c.NArg() {
			case 1:
				path = c.Args().Get(0)
			case 2:
				overridePath = c.Args().Get(0)
				path = c.Args().Get(1)
			default:
				return usageError(c, "restore needs a save file")
			}

			return migration.Restore(c.Context, ctrl, path,
				migration.RestoreOptions{
					OverrideConfigPath: overridePath,
					Paused:             c.Bool("pause"),
					Debug:              c.Bool("debug"),
				},
			)
		},
	}
}
