// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/migration"
)

func migrateReceiveCommand(cfg IO, ctrl domctl.Controller) *cli.Command {
	return &cli.Command{
		Name:   "migrate-receive",
		Usage:  "receive a migrating domain (internal, invoked by migrate)",
		Hidden: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "checkpointed",
				Aliases: []string{"r"},
				Usage:   "receive a periodically checkpointed stream",
			},
			&cli.BoolFlag{
				Name:  "colo",
				Usage: "receive a mirrored replication stream",
			},
			&cli.StringFlag{
				Name:  "coloft-script",
				Usage: "run `SCRIPT` on mirrored-stream failover",
			},
			&cli.BoolFlag{
				Name:    "pause",
				Aliases: []string{"p"},
				Usage:   "do not unpause domain after migration",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "enable debug messages in the restore stream",
			},
			&cli.BoolFlag{
				Name:    "exit",
				Aliases: []string{"e"},
				Usage:   "do not monitor the domain (accepted for compatibility)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 0 {
				return usageError(c, "migrate-receive takes no arguments")
			}

			kind := domctl.StreamNone

			switch {
			case c.Bool("colo"):
				kind = domctl.StreamMirrored
			case c.Bool("checkpointed"):
				kind = domctl.StreamCheckpointed
			}

			return migration.Receive(c.Context, ctrl,
				migration.ReceiveOptions{
					Kind:           kind,
					PauseAfter:     c.Bool("pause"),
					Debug:          c.Bool("debug"),
					FailoverScript: c.String("coloft-script"),
					In:             cfg.Stdin,
					Out:            cfg.Stdout,
				},
			)
		},
	}
}
