// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"bytes"
	"fmt"
	"io"
)

// Control sentinels. Both ends of a deployment must use identical values.
// The bytes carry no payload beyond their identity; they are verified by
// whole-length comparison, never by prefix match.
var (
	sentinelBanner = []byte("guestctl migration receiver, protocol v1\n")
	sentinelReady  = []byte("domain received, holding paused for go\x00")
	sentinelGo     = []byte("domain is yours, cleared to start\x00")
	sentinelReport = []byte("startup report for my copy follows\x00")
)

// readSentinel reads exactly len(want) bytes and verifies them against the
// expected sentinel. A short read is an I/O error, any byte difference a
// [ProtocolError].
func readSentinel(r io.Reader, want []byte, what string) error {
	buf := make([]byte, len(want))

	_, err := io.ReadFull(r, buf)
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}

	if !bytes.Equal(buf, want) {
		return &ProtocolError{What: what}
	}

	return nil
}

// writeSentinel writes the sentinel completely or fails.
func writeSentinel(w io.Writer, msg []byte, what string) error {
	err := writeFull(w, msg)
	if err != nil {
		return fmt.Errorf("write %s: %w", what, err)
	}

	return nil
}

// writeFull writes all of buf. The runtime restarts interrupted writes, so
// any genuine error is final.
func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}

		if n == 0 {
			return io.ErrShortWrite
		}

		buf = buf[n:]
	}

	return nil
}
