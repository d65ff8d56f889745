// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package domctl

import (
	"context"
	"io"
)

// Domain identifies a single guest.
type Domain struct {
	ID   uint32
	Name string
}

// StreamKind distinguishes the one-shot migration stream from the
// continuous checkpointed variants that share its vocabulary.
type StreamKind int

const (
	// StreamNone is a plain one-shot save or migration stream.
	StreamNone StreamKind = iota
	// StreamCheckpointed is a periodically checkpointed replication stream.
	StreamCheckpointed
	// StreamMirrored is a lock-step mirrored replication stream. The guest
	// is already running on the surviving side after a failover.
	StreamMirrored
)

// SuspendOptions control how a domain's state is captured.
type SuspendOptions struct {
	// Live keeps the guest running while memory is transferred, suspending
	// it only for the final iteration.
	Live bool
	// Debug verifies transferred memory against the source.
	Debug bool
}

// RestoreOptions control how a domain is recreated from a state stream.
// The domain is always created paused; the caller decides when to unpause.
type RestoreOptions struct {
	// Name to create the domain under. Usually a transient inbound name
	// that is renamed to the canonical one once the sender commits.
	Name string
	// Kind of the incoming stream. The checkpointed kinds loop until the
	// sender goes away.
	Kind StreamKind
	// FailoverScript is run on mirrored-stream failover.
	FailoverScript string
	Debug          bool
}

// ReplicateOptions control a continuous checkpointed replication.
type ReplicateOptions struct {
	// Interval between checkpoints. Ignored in mirrored mode.
	IntervalMS int
	// Mirror runs lock-step mirroring instead of periodic checkpoints.
	Mirror bool
	// Compression of the memory checkpoint stream.
	Compression bool
	// NetBuffer holds outgoing network traffic between checkpoints.
	NetBuffer bool
	// DiskBuffer holds disk writes between checkpoints.
	DiskBuffer bool
	// NetBufferScript sets up the buffering plumbing.
	NetBufferScript string
	// AllowUnsafe permits running without net and disk buffering.
	AllowUnsafe bool
}

// Controller performs domain lifecycle operations. Implementations serialize
// internally; calls are blocking and safe to issue sequentially without
// external locking. Streaming operations write to or read from the given
// streams until the operation completes or fails.
type Controller interface {
	// Lookup resolves a domain name or numeric ID.
	Lookup(ctx context.Context, nameOrID string) (Domain, error)

	// RetrieveConfig returns the live configuration of a running domain.
	RetrieveConfig(ctx context.Context, id uint32) (*Config, error)

	// Suspend captures the domain state onto the given stream. The domain
	// is left suspended on success. A suspend that timed out is reported
	// as [ErrSuspendTimeout], which implies the guest may still be alive
	// and resumable.
	Suspend(ctx context.Context, id uint32, state io.Writer, opts SuspendOptions) error

	// Resume resumes a suspended domain.
	Resume(ctx context.Context, id uint32) error

	// Pause pauses a running domain.
	Pause(ctx context.Context, id uint32) error

	// Unpause unpauses a paused domain.
	Unpause(ctx context.Context, id uint32) error

	// Rename gives the domain a new name.
	Rename(ctx context.Context, id uint32, newName string) error

	// Destroy irrevocably destroys the domain.
	Destroy(ctx context.Context, id uint32) error

	// Restore creates a new paused domain from the given state stream.
	Restore(ctx context.Context, state io.Reader, cfg *Config, opts RestoreOptions) (Domain, error)

	// Replicate runs a continuous checkpoint loop for the domain, sending
	// checkpoints to send and reading acknowledgements from recv. It
	// blocks until replication fails or the domain is gone. recv may be
	// nil when checkpoints go to a blackhole.
	Replicate(ctx context.Context, id uint32, send io.Writer, recv io.Reader, opts ReplicateOptions) error

	// Exists reports whether the domain still exists.
	Exists(ctx context.Context, id uint32) bool
}
