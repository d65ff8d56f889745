// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/savefile"
	"github.com/guestctl/guestctl/internal/transport"
)

// ErrReplicationEnded is returned when the replication loop returned
// without an error while the primary domain still exists.
var ErrReplicationEnded = errors.New("replication ended unexpectedly")

// RemusOptions control a continuous replication invocation.
type RemusOptions struct {
	// Rune is the transport command. Ignored with Blackhole.
	Rune string
	// IntervalMS between checkpoints. Ignored with Mirror.
	IntervalMS int
	// Mirror runs lock-step mirroring instead of periodic checkpoints.
	Mirror bool
	// Blackhole discards the checkpoint stream instead of spawning a
	// transport. For testing the primary-side overhead only.
	Blackhole bool

	Compression     bool
	NetBuffer       bool
	DiskBuffer      bool
	NetBufferScript string
	AllowUnsafe     bool

	// Stderr receives operator-facing status messages. Defaults to
	// [os.Stderr].
	Stderr io.Writer
}

// Remus starts continuous checkpointed replication of the domain to the
// rune's remote end. It shares the migration preamble, then hands the
// channel to the domain-control replication loop, which only returns on
// failure or failover. A vanished primary domain afterwards means failover
// happened and is reported as success.
func Remus(
	ctx context.Context,
	ctrl domctl.Controller,
	nameOrID string,
	opts RemusOptions,
) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	dom, err := ctrl.Lookup(ctx, nameOrID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", nameOrID, err)
	}

	var (
		send      io.Writer
		recv      io.Reader
		ch        *transport.Channel
		blackhole *os.File
	)

	if opts.Blackhole {
		blackhole, err = os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("open blackhole: %w", err)
		}
		defer blackhole.Close()

		send = blackhole
	} else {
		config, err := domctl.BuildConfig(ctx, ctrl, dom.ID, "")
		if err != nil {
			return err
		}

		ch, err = transport.Spawn(opts.Rune)
		if err != nil {
			return fmt.Errorf("spawn transport %q: %w", opts.Rune, err)
		}
		defer ch.Close()

		// Same preamble as a one-shot migration.
		err = readSentinel(ch, sentinelBanner, "banner")
		if err != nil {
			_ = ch.CloseSend()
			ch.Reap()

			return err
		}

		err = savefile.WriteConfig(ch, "replication stream", config)
		if err != nil {
			_ = ch.CloseSend()
			ch.Reap()

			return err
		}

		send, recv = ch, ch
	}

	// Point of no return: from here the checkpoint loop owns the domain.
	err = ctrl.Replicate(ctx, dom.ID, send, recv, domctl.ReplicateOptions{
		IntervalMS:      opts.IntervalMS,
		Mirror:          opts.Mirror,
		Compression:     opts.Compression,
		NetBuffer:       opts.NetBuffer,
		DiskBuffer:      opts.DiskBuffer,
		NetBufferScript: opts.NetBufferScript,
		AllowUnsafe:     opts.AllowUnsafe,
	})

	// The operator may have destroyed the primary to force a failover.
	if !ctrl.Exists(ctx, dom.ID) {
		fmt.Fprintln(stderr, "Primary domain has been destroyed.")
		reapRemus(ch)

		return nil
	}

	if errors.Is(err, domctl.ErrSuspendTimeout) {
		fmt.Fprintln(stderr, "Failed to suspend domain at primary.")
	} else {
		fmt.Fprintln(stderr, "Replication failed, resuming domain at primary.")

		resumeErr := ctrl.Resume(ctx, dom.ID)
		if resumeErr != nil {
			slog.Error("Failed to resume primary domain",
				slog.Any("error", resumeErr))
		}
	}

	reapRemus(ch)

	if err == nil {
		err = ErrReplicationEnded
	}

	return err
}

func reapRemus(ch *transport.Channel) {
	if ch == nil {
		return
	}

	_ = ch.CloseSend()
	ch.Reap()
}
