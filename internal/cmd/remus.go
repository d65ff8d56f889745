// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/migration"
)

const defaultCheckpointIntervalMS = 200

func remusCommand(cfg IO, ctrl domctl.Controller) *cli.Command {
	return &cli.Command{
		Name:      "remus",
		Usage:     "enable continuous checkpointed replication for a domain",
		ArgsUsage: "<domain> <host>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "checkpoint every `MS` milliseconds",
			},
			&cli.BoolFlag{
				Name:    "colo",
				Aliases: []string{"c"},
				Usage:   "mirror the domain in lock-step instead of checkpointing",
			},
			&cli.BoolFlag{
				Name:    "blackhole",
				Aliases: []string{"b"},
				Usage:   "discard the checkpoint stream (measures primary overhead)",
			},
			&cli.BoolFlag{
				Name:    "no-compression",
				Aliases: []string{"u"},
				Usage:   "disable memory checkpoint compression",
			},
			&cli.BoolFlag{
				Name:    "no-netbuffer",
				Aliases: []string{"n"},
				Usage:   "disable network output buffering (unsafe)",
			},
			&cli.BoolFlag{
				Name:    "no-diskbuffer",
				Aliases: []string{"d"},
				Usage:   "disable disk replication (unsafe)",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"F"},
				Usage:   "run even without net and disk buffering",
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
				Name:    "netbuf-script",
				Aliases: []string{"N"},
				Usage:   "use `SCRIPT` to set up network buffering",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c, "remus needs a domain and a host")
			}

			mirror := c.Bool("colo")

			if mirror && (c.Int("interval") != 0 || c.Bool("blackhole") ||
				c.Bool("no-netbuffer") || c.Bool("no-diskbuffer")) {
				return usageError(c,
					"--colo conflicts with -i, -b, -n and -d")
			}

			interval := c.Int("interval")
			if !mirror && interval == 0 {
				interval = defaultCheckpointIntervalMS
			}

			// Mirroring keeps both sides in lock step; compressing the
			// checkpoint stream would only add latency there.
			compression := !c.Bool("no-compression") && !mirror

			rune_ := migrateRune(
				c.String("ssh"),
				c.Args().Get(1),
				receiveFlags{
					noMonitor:  c.Bool("exit"),
					checkpoint: !mirror,
					mirror:     mirror,
					coloScript: c.String("netbuf-script"),
				},
			)

			return migration.Remus(c.Context, ctrl, c.Args().Get(0),
				migration.RemusOptions{
					Rune:            rune_,
					IntervalMS:      interval,
					Mirror:          mirror,
					Blackhole:       c.Bool("blackhole"),
					Compression:     compression,
					NetBuffer:       !c.Bool("no-netbuffer"),
					DiskBuffer:      !c.Bool("no-diskbuffer"),
					NetBufferScript: c.String("netbuf-script"),
					AllowUnsafe:     c.Bool("force"),
					Stderr:          cfg.Stderr,
				},
			)
		},
	}
}
