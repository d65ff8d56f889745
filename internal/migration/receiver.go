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

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/savefile"
)

// ErrNoConfig is returned by the receiver if the save stream carries no
// domain configuration to restore from.
var ErrNoConfig = errors.New("save stream carries no domain configuration")

// Receiver drives the receiving half of the migration handshake: send
// banner, restore the domain paused, then either run the ready/go/report
// exchange or, for the checkpointed stream kinds, take the failover path.
type Receiver struct {
	Ctrl domctl.Controller

	// In is the receive stream, Out the send ("ack") stream back to the
	// sender.
	In  io.Reader
	Out io.Writer

	// Kind of the incoming stream.
	Kind domctl.StreamKind
	// PauseAfter leaves the domain paused instead of unpausing it on go.
	PauseAfter bool
	// Debug is passed through to the restore.
	Debug bool
	// FailoverScript is run on mirrored-stream failover.
	FailoverScript string
}

// Run executes the receiver sequence and returns the first terminal error.
// When startup fails after a completed transfer, the receiver destroys its
// copy and grants the sender permission to resume before returning.
func (r *Receiver) Run(ctx context.Context) error {
	slog.Info("Ready to receive domain")

	err := writeSentinel(r.Out, sentinelBanner, "banner")
	if err != nil {
		return err
	}

	_, configBytes, err := savefile.ReadConfig(r.In)
	if err != nil {
		return err
	}

	if len(configBytes) == 0 {
		return ErrNoConfig
	}

	cfg, err := domctl.DecodeConfig(configBytes)
	if err != nil {
		return err
	}

	dom, err := r.Ctrl.Restore(ctx, r.In, cfg, domctl.RestoreOptions{
		Name:           cfg.Name + incomingSuffix,
		Kind:           r.Kind,
		FailoverScript: r.FailoverScript,
		Debug:          r.Debug,
	})
	if err != nil {
		return fmt.Errorf("domain creation failed: %w", err)
	}

	if r.Kind != domctl.StreamNone {
		return r.failover(ctx, dom, cfg.Name)
	}

	slog.Info("Transfer complete, requesting permission to start domain")

	err = writeSentinel(r.Out, sentinelReady, "ready message")
	if err != nil {
		return err
	}

	startErr := r.start(ctx, dom, cfg.Name)
	if startErr == nil {
		slog.Info("Domain started successfully")
	}

	return r.report(ctx, dom, startErr)
}

// start awaits the go message and brings the restored domain up under its
// canonical name.
func (r *Receiver) start(
	ctx context.Context,
	dom domctl.Domain,
	name string,
) error {
	err := readSentinel(r.In, sentinelGo, "go message")
	if err != nil {
		return err
	}

	slog.Info("Got permission, starting domain")

	if name != "" {
		err = r.Ctrl.Rename(ctx, dom.ID, name)
		if err != nil {
			return fmt.Errorf("rename to canonical name: %w", err)
		}
	}

	if !r.PauseAfter {
		err = r.Ctrl.Unpause(ctx, dom.ID)
		if err != nil {
			return fmt.Errorf("unpause: %w", err)
		}
	}

	return nil
}

// report sends the report sentinel and status byte. On startup failure it
// destroys the local copy and grants the sender permission to resume; only
// with that grant on the wire may the sender ever resume again.
func (r *Receiver) report(
	ctx context.Context,
	dom domctl.Domain,
	startErr error,
) error {
	err := writeSentinel(r.Out, sentinelReport, "report message")
	if err != nil {
		return err
	}

	status := byte(0)
	if startErr != nil {
		status = 1
	}

	err = writeFull(r.Out, []byte{status})
	if err != nil {
		return fmt.Errorf("write startup status: %w", err)
	}

	if startErr == nil {
		return nil
	}

	slog.Warn("Startup failed, destroying our copy",
		slog.Any("error", startErr))

	err = r.Ctrl.Destroy(ctx, dom.ID)
	if err != nil {
		return fmt.Errorf("destroy our copy: %w", err)
	}

	slog.Info("Cleanup OK, granting sender permission to resume")

	err = writeSentinel(r.Out, sentinelGo, "permission to resume")
	if err != nil {
		return err
	}

	return startErr
}

// failover handles the checkpointed stream kinds: the restore loop only
// returns once the sender is gone, so the domain is brought back under its
// canonical name without any further exchange. Renaming failures are
// tolerated, the guest staying reachable matters more than its name.
func (r *Receiver) failover(
	ctx context.Context,
	dom domctl.Domain,
	name string,
) error {
	slog.Warn("Replication failover",
		slog.Uint64("domid", uint64(dom.ID)),
		slog.Bool("mirrored", r.Kind == domctl.StreamMirrored))

	var renameErr error

	if name != "" {
		renameErr = r.Ctrl.Rename(ctx, dom.ID, name)
		if renameErr != nil {
			slog.Error("Failed to rename domain to canonical name",
				slog.String("name", name),
				slog.Any("error", renameErr))
		}
	}

	// In mirrored mode the guest is already running on this side.
	if r.Kind == domctl.StreamMirrored {
		return renameErr
	}

	err := r.Ctrl.Unpause(ctx, dom.ID)
	if err != nil {
		return fmt.Errorf("unpause after failover: %w", err)
	}

	return nil
}
