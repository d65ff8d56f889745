// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateRune(t *testing.T) {
	tests := []struct {
		name     string
		ssh      string
		host     string
		flags    receiveFlags
		expected string
	}{
		{
			name:     "default",
			ssh:      "ssh",
			host:     "peer",
			expected: "exec ssh peer guestctl migrate-receive",
		},
		{
			name: "all plain flags",
			ssh:  "ssh",
			host: "peer",
			flags: receiveFlags{
				debug:      true,
				pauseAfter: true,
				noMonitor:  true,
			},
			expected: "exec ssh peer guestctl migrate-receive -e -d -p",
		},
		{
			name:     "custom remote shell",
			ssh:      "ssh -l migration",
			host:     "peer",
			expected: "exec ssh -l migration peer guestctl migrate-receive",
		},
		{
			name: "empty ssh makes host the transport command",
			ssh:  "",
			host: "socat - TCP:peer:8002",
			// No receiver invocation is appended; the operator's command
			// is expected to produce one on the other end.
			expected: "socat - TCP:peer:8002",
		},
		{
			name:     "checkpointed",
			ssh:      "ssh",
			host:     "peer",
			flags:    receiveFlags{checkpoint: true},
			expected: "exec ssh peer guestctl migrate-receive -r",
		},
		{
			name:     "mirrored",
			ssh:      "ssh",
			host:     "peer",
			flags:    receiveFlags{mirror: true},
			expected: "exec ssh peer guestctl migrate-receive --colo",
		},
		{
			name: "mirrored with failover script",
			ssh:  "ssh",
			host: "peer",
			flags: receiveFlags{
				mirror:     true,
				coloScript: "/etc/guestctl/colo-ft.sh",
			},
			expected: "exec ssh peer guestctl migrate-receive --colo" +
				" --coloft-script /etc/guestctl/colo-ft.sh",
		},
		{
			name: "mirror wins over checkpoint",
			ssh:  "ssh",
			host: "peer",
			flags: receiveFlags{
				checkpoint: true,
				mirror:     true,
			},
			expected: "exec ssh peer guestctl migrate-receive --colo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := migrateRune(tt.ssh, tt.host, tt.flags)
			assert.Equal(t, tt.expected, actual)
		})
	}
}
