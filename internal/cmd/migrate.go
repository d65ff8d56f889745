// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/migration"
)

func migrateCommand(cfg IO, ctrl domctl.Controller) *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "migrate a domain to another host",
		ArgsUsage: "<domain> <host>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "live",
				Usage: "live migration (default, accepted for compatibility)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verify transferred memory against the source",
			},
			&cli.BoolFlag{
				Name:    "pause",
				Aliases: []string{"p"},
				Usage:   "do not unpause domain on the target host",
			},
			&cli.BoolFlag{
				Name:    "exit",
				Aliases: []string{"e"},
				Usage:   "do not monitor the domain on the target host",
			},
			&cli.StringFlag{
				Name:    "ssh",
				Aliases: []string{"s"},
				Value:   "ssh",
				Usage: "use `COMMAND` instead of ssh to reach the target;" +
					" an empty string makes <host> the raw transport command",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"C"},
				Usage:   "send the config `FILE` instead of the live configuration",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c, "migrate needs a domain and a host")
			}

			rune_ := migrateRune(
				c.String("ssh"),
				c.Args().Get(1),
				receiveFlags{
					debug:      c.Bool("debug"),
					pauseAfter: c.Bool("pause"),
					noMonitor:  c.Bool("exit"),
				},
			)

			return migration.Migrate(c.Context, ctrl, c.Args().Get(0),
				migration.MigrateOptions{
					Rune:               rune_,
					OverrideConfigPath: c.String("config"),
					Debug:              c.Bool("debug"),
					Stderr:             cfg.Stderr,
				},
			)
		},
	}
}

// receiveFlags are forwarded to the remote migrate-receive invocation.
type receiveFlags struct {
	debug      bool
	pauseAfter bool
	noMonitor  bool
	checkpoint bool
	mirror     bool
	coloScript string
}

// migrateRune builds the transport command: a remote login tool
// re-invoking the receiver subcommand on the target. An empty ssh command
// means the host argument already is the complete transport command.
func migrateRune(ssh, host string, flags receiveFlags) string {
	if ssh == "" {
		return host
	}

	parts := []string{"exec", ssh, host, "guestctl", "migrate-receive"}

	switch {
	case flags.mirror:
		parts = append(parts, "--colo")
		if flags.coloScript != "" {
			parts = append(parts, "--coloft-script", flags.coloScript)
		}
	case flags.checkpoint:
		parts = append(parts, "-r")
	}

	if flags.noMonitor {
		parts = append(parts, "-e")
	}

	if flags.debug {
		parts = append(parts, "-d")
	}

	if flags.pauseAfter {
		parts = append(parts, "-p")
	}

	return strings.Join(parts, " ")
}
