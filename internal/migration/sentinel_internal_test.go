// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSentinelMatch(t *testing.T) {
	sentinels := map[string][]byte{
		"banner": sentinelBanner,
		"ready":  sentinelReady,
		"go":     sentinelGo,
		"report": sentinelReport,
	}

	for name, want := range sentinels {
		t.Run(name, func(t *testing.T) {
			// Trailing bytes must be left unread for the caller.
			input := bytes.NewBuffer(append(append([]byte{}, want...), 'x'))

			err := readSentinel(input, want, name)
			require.NoError(t, err)

			assert.Equal(t, []byte{'x'}, input.Bytes())
		})
	}
}

func TestReadSentinelCorruption(t *testing.T) {
	sentinels := map[string][]byte{
		"banner": sentinelBanner,
		"ready":  sentinelReady,
		"go":     sentinelGo,
		"report": sentinelReport,
	}

	for name, want := range sentinels {
		t.Run(name, func(t *testing.T) {
			// Any single corrupted byte must be rejected, no matter
			// where it sits.
			for i := range want {
				t.Run(fmt.Sprintf("byte %d", i), func(t *testing.T) {
					corrupt := append([]byte{}, want...)
					corrupt[i] ^= 0x01

					err := readSentinel(bytes.NewReader(corrupt), want, name)
					require.ErrorIs(t, err, &ProtocolError{})
				})
			}
		})
	}
}

func TestReadSentinelShortStream(t *testing.T) {
	err := readSentinel(
		bytes.NewReader(sentinelReady[:len(sentinelReady)-1]),
		sentinelReady,
		"ready message",
	)

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.NotErrorIs(t, err, &ProtocolError{})
}

func TestSentinelsDistinct(t *testing.T) {
	sentinels := [][]byte{
		sentinelBanner, sentinelReady, sentinelGo, sentinelReport,
	}

	for i, a := range sentinels {
		for _, b := range sentinels[i+1:] {
			assert.False(t, bytes.Equal(a, b))
			assert.False(t, bytes.HasPrefix(a, b))
			assert.False(t, bytes.HasPrefix(b, a))
		}
	}
}
