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

const (
	// awaySuffix is appended to the source domain's name once the target
	// has acknowledged the transfer, the last cheaply reversible step
	// before handover.
	awaySuffix = "--migratedaway"

	// incomingSuffix is the transient name the receiver restores under
	// until the sender commits.
	incomingSuffix = "--incoming"
)

// Sender drives the sending half of the migration handshake over the given
// streams. It owns the protocol sequence only; the orchestrator performs
// the cleanup matching the returned [Outcome].
type Sender struct {
	Ctrl   domctl.Controller
	Domain domctl.Domain

	// Config is the serialized domain configuration for the save stream
	// preamble.
	Config []byte

	// In is the receive stream, Out the send stream of the transport.
	In  io.Reader
	Out io.Writer

	// Live transfers memory while the guest keeps running.
	Live bool
	// Debug verifies transferred memory.
	Debug bool
}

// Run executes the sender sequence: await banner, stream config and domain
// state, await ready, rename away, send go, evaluate the receiver's report.
// After the go write has succeeded the source domain is never resumed
// except through the negotiated rollback.
func (s *Sender) Run(ctx context.Context) Outcome {
	// Nothing has side effects before the banner verifies.
	err := readSentinel(s.In, sentinelBanner, "banner")
	if err != nil {
		return Outcome{Kind: FailureProtocol, Err: err}
	}

	err = savefile.WriteConfig(s.Out, "migration stream", s.Config)
	if err != nil {
		return Outcome{Kind: FailurePreGo, Err: err}
	}

	err = s.Ctrl.Suspend(ctx, s.Domain.ID, s.Out, domctl.SuspendOptions{
		Live:  s.Live,
		Debug: s.Debug,
	})
	if err != nil {
		err = fmt.Errorf("suspend domain: %w", err)
		if errors.Is(err, domctl.ErrSuspendTimeout) {
			return Outcome{Kind: FailureSuspendTimeout, Err: err}
		}

		return Outcome{Kind: FailurePreGo, Err: err}
	}

	err = readSentinel(s.In, sentinelReady, "ready message")
	if err != nil {
		return classifyHandshake(err)
	}

	slog.Info("Target has acknowledged transfer")

	// The target is about to get permission to rename and start, so the
	// source copy must move out of the way first.
	away := ""
	if s.Domain.Name != "" {
		away = s.Domain.Name + awaySuffix

		err = s.Ctrl.Rename(ctx, s.Domain.ID, away)
		if err != nil {
			return Outcome{
				Kind: FailurePreGo,
				Err:  fmt.Errorf("rename away: %w", err),
			}
		}
	}

	slog.Info("Giving target permission to start")

	// Point of no return. Once this write has returned success it is not
	// safe to carry on locally; the domain stays renamed away in case
	// that helps a manual recovery.
	err = writeSentinel(s.Out, sentinelGo, "go message")
	if err != nil {
		return Outcome{Kind: FailurePostGo, Err: err}
	}

	err = readSentinel(s.In, sentinelReport, "report message")
	if err != nil {
		return Outcome{Kind: FailurePostGo, Err: err}
	}

	var status [1]byte

	_, err = io.ReadFull(s.In, status[:])
	if err != nil {
		return Outcome{
			Kind: FailurePostGo,
			Err:  fmt.Errorf("read startup status: %w", err),
		}
	}

	if status[0] != 0 {
		return s.rollback(ctx, away, status[0])
	}

	slog.Info("Target reports successful startup")

	err = s.Ctrl.Destroy(ctx, s.Domain.ID)
	if err != nil {
		slog.Warn("Failed to destroy source copy of migrated domain",
			slog.Any("error", err))
	}

	return Outcome{}
}

// rollback is the single negotiated path that resumes the source domain
// after handover: the receiver failed to start its copy, destroyed it, and
// granted permission to resume.
func (s *Sender) rollback(
	ctx context.Context,
	away string,
	status byte,
) Outcome {
	slog.Warn("Target reports startup failure",
		slog.Int("status", int(status)))

	err := readSentinel(s.In, sentinelGo, "permission to resume")
	if err != nil {
		return Outcome{Kind: FailurePostGo, Err: err}
	}

	slog.Info("Trying to resume at our end")

	if away != "" {
		err = s.Ctrl.Rename(ctx, s.Domain.ID, s.Domain.Name)
		if err != nil {
			slog.Error("Failed to rename source domain back",
				slog.String("name", s.Domain.Name),
				slog.Any("error", err))
		}
	}

	err = s.Ctrl.Resume(ctx, s.Domain.ID)
	if err != nil {
		slog.Error("Failed to resume source domain",
			slog.Any("error", err))
	} else {
		slog.Info("Resumed OK")
	}

	return Outcome{
		Kind: FailureRemoteStartup,
		Err:  fmt.Errorf("%w (status %d)", ErrRemoteStartup, status),
	}
}

// classifyHandshake routes a handshake failure before the point of no
// return: a sentinel mismatch aborts without touching the source domain, an
// I/O failure triggers the local resume path.
func classifyHandshake(err error) Outcome {
	if errors.Is(err, &ProtocolError{}) {
		return Outcome{Kind: FailureProtocol, Err: err}
	}

	return Outcome{Kind: FailurePreGo, Err: err}
}
