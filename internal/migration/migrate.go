// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/guestctl/guestctl/internal/domctl"
	"github.com/guestctl/guestctl/internal/transport"
)

// sessionChannel is the part of the transport a finished session still
// needs for cleanup.
type sessionChannel interface {
	io.ReadWriter
	CloseSend() error
	Reap()
}

var _ sessionChannel = (*transport.Channel)(nil)

// MigrateOptions control a migrate invocation.
type MigrateOptions struct {
	// Rune is the transport command, typically a remote login tool
	// re-invoking "guestctl migrate-receive" on the target host.
	Rune string
	// OverrideConfigPath replaces the domain's live configuration.
	OverrideConfigPath string
	// Debug verifies transferred memory.
	Debug bool
	// Stderr receives operator-facing status messages. Defaults to
	// [os.Stderr].
	Stderr io.Writer
}

// Migrate moves the domain to wherever the rune's remote end restores it.
// The transfer is live; the source copy is destroyed only after the target
// reported successful startup.
func Migrate(
	ctx context.Context,
	ctrl domctl.Controller,
	nameOrID string,
	opts MigrateOptions,
) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	dom, err := ctrl.Lookup(ctx, nameOrID)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", nameOrID, err)
	}

	config, err := domctl.BuildConfig(ctx, ctrl, dom.ID, opts.OverrideConfigPath)
	if err != nil {
		return err
	}

	ch, err := transport.Spawn(opts.Rune)
	if err != nil {
		return fmt.Errorf("spawn transport %q: %w", opts.Rune, err)
	}
	defer ch.Close()

	sender := &Sender{
		Ctrl:   ctrl,
		Domain: dom,
		Config: config,
		In:     ch,
		Out:    ch,
		Live:   true,
		Debug:  opts.Debug,
	}

	return finish(ctx, ctrl, dom, ch, sender.Run(ctx), stderr)
}

// finish is the single exhaustive dispatch that performs the cleanup
// matching the session outcome: close the send stream, conditionally
// resume the source domain, reap the transport child.
func finish(
	ctx context.Context,
	ctrl domctl.Controller,
	dom domctl.Domain,
	ch sessionChannel,
	out Outcome,
	stderr io.Writer,
) error {
	switch out.Kind {
	case FailureNone:
		_ = ch.CloseSend()
		ch.Reap()
		fmt.Fprintln(stderr, "Migration successful.")

		return nil

	case FailureProtocol:
		_ = ch.CloseSend()
		ch.Reap()
		fmt.Fprintln(stderr, "Migration failed, source domain untouched.")

		return out.Err

	case FailureSuspendTimeout:
		_ = ch.CloseSend()
		ch.Reap()
		fmt.Fprintln(stderr, "Migration failed, could not suspend at sender.")

		return out.Err

	case FailurePreGo:
		_ = ch.CloseSend()
		ch.Reap()
		fmt.Fprintln(stderr, "Migration failed, resuming at sender.")

		err := ctrl.Resume(ctx, dom.ID)
		if err != nil {
			slog.Error("Failed to resume source domain",
				slog.Any("error", err))
		} else {
			fmt.Fprintln(stderr, "Resumed OK.")
		}

		return out.Err

	case FailureRemoteStartup:
		// The sender already completed the negotiated rollback.
		_ = ch.CloseSend()
		ch.Reap()
		fmt.Fprintln(stderr, "Migration failed due to problems at the target.")

		return out.Err

	case FailurePostGo:
		printUndefinedStateWarning(stderr)

		_ = ch.CloseSend()
		ch.Reap()

		return out.Err

	default:
		return out.Err
	}
}

func printUndefinedStateWarning(w io.Writer) {
	fmt.Fprint(w, `** Migration failed during the final handshake **
The domain state is now UNDEFINED.
Check BOTH hosts for running instances before renaming and resuming at
most one of them. Two simultaneously running instances of the domain
would likely cause severe data loss; avoiding that is now up to you.
`)
}
