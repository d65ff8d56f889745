// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"log/slog"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// reapBound caps how long teardown may wait for the transport child.
	reapBound = 2 * time.Second
	// reapPollInterval is the sleep granularity once the receive stream is
	// no longer usable for readiness waits.
	reapPollInterval = time.Millisecond
)

// Reap waits for the transport child to exit and logs its status, giving up
// after a fixed bound so teardown latency stays capped no matter how the
// child behaves. While waiting it multiplexes child liveness against the
// receive stream becoming ready, falling back to short sleeps once the
// stream has signalled. Call it before [Channel.Close].
func (c *Channel) Reap() {
	if c.pid == 0 {
		return
	}

	deadline := time.Now().Add(reapBound)
	recvFD := int(c.recv.Fd())
	useRecv := recvFD >= 0

	for {
		var status unix.WaitStatus

		pid, err := unix.Wait4(c.pid, &status, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			slog.Warn("Wait for transport child failed",
				slog.Int("pid", c.pid),
				slog.Any("error", err))

			return
		case pid == c.pid:
			if status != 0 {
				slog.Info("Transport child exited",
					slog.Int("pid", c.pid),
					slog.Int("status", int(status)))
			}

			c.pid = 0

			return
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			slog.Warn("Transport child not exiting, no longer waiting,"+
				" exit status will be unknown",
				slog.Int("pid", c.pid))

			return
		}

		if useRecv {
			var readFDs, exceptFDs unix.FdSet

			readFDs.Set(recvFD)
			exceptFDs.Set(recvFD)

			timeout := unix.NsecToTimeval(remaining.Nanoseconds())

			n, err := unix.Select(recvFD+1, &readFDs, nil, &exceptFDs, &timeout)
			switch {
			case err == unix.EINTR:
			case err != nil:
				slog.Warn("Transport child exit wait failed",
					slog.Int("pid", c.pid),
					slog.Any("error", err))

				return
			case n > 0:
				// The stream signalled once. From here on only short
				// sleeps, so a chatty child cannot spin this loop.
				useRecv = false
			}

			continue
		}

		sleep := reapPollInterval
		if remaining < sleep {
			sleep = remaining
		}

		time.Sleep(sleep)
	}
}
