// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guestctl/guestctl/internal/domctl"
)

// fakeSession stands in for a transport channel during cleanup.
type fakeSession struct {
	sendClosed bool
	reaped     bool
}

func (s *fakeSession) Read(_ []byte) (int, error) { return 0, io.EOF }

func (s *fakeSession) Write(p []byte) (int, error) { return len(p), nil }

func (s *fakeSession) CloseSend() error {
	s.sendClosed = true

	return nil
}

func (s *fakeSession) Reap() { s.reaped = true }

func TestFinish(t *testing.T) {
	errSession := errors.New("session failed")

	tests := []struct {
		name           string
		outcome        Outcome
		expectedCalls  []string
		expectedOutput string
		expectErr      bool
	}{
		{
			name:           "success",
			outcome:        Outcome{},
			expectedOutput: "Migration successful.\n",
		},
		{
			name:           "protocol violation",
			outcome:        Outcome{Kind: FailureProtocol, Err: errSession},
			expectedOutput: "Migration failed, source domain untouched.\n",
			expectErr:      true,
		},
		{
			name:           "suspend timeout",
			outcome:        Outcome{Kind: FailureSuspendTimeout, Err: errSession},
			expectedOutput: "Migration failed, could not suspend at sender.\n",
			expectErr:      true,
		},
		{
			name:          "before handover",
			outcome:       Outcome{Kind: FailurePreGo, Err: errSession},
			expectedCalls: []string{"resume 5"},
			expectedOutput: "Migration failed, resuming at sender.\n" +
				"Resumed OK.\n",
			expectErr: true,
		},
		{
			name:           "remote startup",
			outcome:        Outcome{Kind: FailureRemoteStartup, Err: errSession},
			expectedOutput: "Migration failed due to problems at the target.\n",
			expectErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{}
			session := &fakeSession{}

			var stderr bytes.Buffer

			err := finish(
				context.Background(),
				ctrl,
				domctl.Domain{ID: 5, Name: "web"},
				session,
				tt.outcome,
				&stderr,
			)

			if tt.expectErr {
				require.ErrorIs(t, err, errSession)
			} else {
				require.NoError(t, err)
			}

			if tt.expectedCalls == nil {
				assert.Empty(t, ctrl.calls)
			} else {
				assert.Equal(t, tt.expectedCalls, ctrl.calls)
			}

			assert.Equal(t, tt.expectedOutput, stderr.String())
			assert.True(t, session.sendClosed)
			assert.True(t, session.reaped)
		})
	}
}

func TestFinishAfterHandover(t *testing.T) {
	errSession := errors.New("session failed")

	ctrl := &fakeController{}
	session := &fakeSession{}

	var stderr bytes.Buffer

	err := finish(
		context.Background(),
		ctrl,
		domctl.Domain{ID: 5, Name: "web"},
		session,
		Outcome{Kind: FailurePostGo, Err: errSession},
		&stderr,
	)

	require.ErrorIs(t, err, errSession)

	// State is undefined, so no corrective action, only the operator
	// warning.
	assert.Empty(t, ctrl.calls)
	assert.Contains(t, stderr.String(), "UNDEFINED")
	assert.Contains(t, stderr.String(), "BOTH hosts")
	assert.True(t, session.sendClosed)
	assert.True(t, session.reaped)
}

func TestFinishResumeFailure(t *testing.T) {
	errSession := errors.New("session failed")

	ctrl := &fakeController{resumeErr: errors.New("resume failed")}
	session := &fakeSession{}

	var stderr bytes.Buffer

	err := finish(
		context.Background(),
		ctrl,
		domctl.Domain{ID: 5, Name: "web"},
		session,
		Outcome{Kind: FailurePreGo, Err: errSession},
		&stderr,
	)

	// The session error wins; the failed resume is logged only.
	require.ErrorIs(t, err, errSession)
	assert.NotContains(t, stderr.String(), "Resumed OK.")
}
