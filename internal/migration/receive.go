// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/guestctl/guestctl/internal/domctl"
)

// ReceiveOptions control a migrate-receive invocation.
type ReceiveOptions struct {
	// Kind of the incoming stream.
	Kind domctl.StreamKind
	// PauseAfter leaves the domain paused after a successful migration.
	PauseAfter bool
	Debug      bool
	// FailoverScript is run on mirrored-stream failover.
	FailoverScript string

	// In and Out default to stdin and stdout, which is where the remote
	// login tool puts the sender's streams.
	In  io.Reader
	Out io.Writer
}

// Receive runs the receiving side of a migration on the current host. The
// sender's transport command invokes it remotely with the migration stream
// on stdin and the ack stream on stdout.
func Receive(
	ctx context.Context,
	ctrl domctl.Controller,
	opts ReceiveOptions,
) error {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	// A sender that goes away must surface as a write error, not kill us.
	signal.Ignore(syscall.SIGPIPE)

	receiver := &Receiver{
		Ctrl:           ctrl,
		In:             in,
		Out:            out,
		Kind:           opts.Kind,
		PauseAfter:     opts.PauseAfter,
		Debug:          opts.Debug,
		FailoverScript: opts.FailoverScript,
	}

	return receiver.Run(ctx)
}
