// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"
	"io"

	"github.com/guestctl/guestctl/internal/domctl"
)

// fakeController records every lifecycle call in order and plays back
// canned results. Suspend writes state onto the stream, Restore consumes
// exactly stateLen bytes from it, so a fake pair can drive both ends of a
// real handshake over pipes.
type fakeController struct {
	calls []string

	domain    domctl.Domain
	lookupErr error

	config      *domctl.Config
	retrieveErr error

	state      []byte
	suspendErr error

	resumeErr  error
	pauseErr   error
	unpauseErr error
	renameErr  error
	destroyErr error

	restoreDomain domctl.Domain
	stateLen      int
	restoreErr    error

	replicateErr error
	alive        bool
}

var _ domctl.Controller = (*fakeController)(nil)

func (f *fakeController) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeController) Lookup(
	_ context.Context,
	nameOrID string,
) (domctl.Domain, error) {
	f.record("lookup %s", nameOrID)

	return f.domain, f.lookupErr
}

func (f *fakeController) RetrieveConfig(
	_ context.Context,
	id uint32,
) (*domctl.Config, error) {
	f.record("getconfig %d", id)

	return f.config, f.retrieveErr
}

func (f *fakeController) Suspend(
	_ context.Context,
	id uint32,
	state io.Writer,
	_ domctl.SuspendOptions,
) error {
	f.record("suspend %d", id)

	if f.suspendErr != nil {
		return f.suspendErr
	}

	_, err := state.Write(f.state)

	return err
}

func (f *fakeController) Resume(_ context.Context, id uint32) error {
	f.record("resume %d", id)

	return f.resumeErr
}

func (f *fakeController) Pause(_ context.Context, id uint32) error {
	f.record("pause %d", id)

	return f.pauseErr
}

func (f *fakeController) Unpause(_ context.Context, id uint32) error {
	f.record("unpause %d", id)

	return f.unpauseErr
}

func (f *fakeController) Rename(
	_ context.Context,
	id uint32,
	newName string,
) error {
	f.record("rename %d %s", id, newName)

	return f.renameErr
}

func (f *fakeController) Destroy(_ context.Context, id uint32) error {
	f.record("destroy %d", id)

	return f.destroyErr
}

func (f *fakeController) Restore(
	_ context.Context,
	state io.Reader,
	_ *domctl.Config,
	opts domctl.RestoreOptions,
) (domctl.Domain, error) {
	f.record("restore %s", opts.Name)

	if f.restoreErr != nil {
		return domctl.Domain{}, f.restoreErr
	}

	_, err := io.ReadFull(state, make([]byte, f.stateLen))
	if err != nil {
		return domctl.Domain{}, err
	}

	return f.restoreDomain, nil
}

func (f *fakeController) Replicate(
	_ context.Context,
	id uint32,
	_ io.Writer,
	_ io.Reader,
	_ domctl.ReplicateOptions,
) error {
	f.record("replicate %d", id)

	return f.replicateErr
}

func (f *fakeController) Exists(_ context.Context, id uint32) bool {
	f.record("exists %d", id)

	return f.alive
}
