// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// Channel is a bidirectional byte pipe to a single transport child process.
// Writes go to the child's stdin, reads come from its stdout. A Channel is
// owned by exactly one migration session and is not safe for concurrent use.
type Channel struct {
	send *os.File
	recv *os.File
	pid  int
}

// Spawn starts a shell running the given command with its stdin and stdout
// bridged to the returned [Channel]. The child's stderr is inherited so
// remote diagnostics reach the operator.
//
// SIGPIPE delivery is suppressed for the remainder of the process, so a
// write to a channel whose peer has gone away surfaces as an ordinary I/O
// error instead of terminating the process.
func Spawn(command string) (*Channel, error) {
	sendR, sendW, err := os.Pipe()
	if err != nil {
		return nil, &SetupError{Err: err}
	}

	recvR, recvW, err := os.Pipe()
	if err != nil {
		sendR.Close()
		sendW.Close()

		return nil, &SetupError{Err: err}
	}

	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stdin = sendR
	cmd.Stdout = recvW
	cmd.Stderr = os.Stderr

	signal.Ignore(syscall.SIGPIPE)

	err = cmd.Start()

	// The child's pipe ends are not ours to keep, success or not.
	sendR.Close()
	recvW.Close()

	if err != nil {
		sendW.Close()
		recvR.Close()

		return nil, &SetupError{Err: err}
	}

	return &Channel{
		send: sendW,
		recv: recvR,
		pid:  cmd.Process.Pid,
	}, nil
}

// Read reads from the receive stream.
func (c *Channel) Read(p []byte) (int, error) {
	return c.recv.Read(p)
}

// Write writes to the send stream.
func (c *Channel) Write(p []byte) (int, error) {
	return c.send.Write(p)
}

// CloseSend closes the send stream, signalling end of stream to the child.
func (c *Channel) CloseSend() error {
	return c.send.Close() //nolint:wrapcheck
}

// Close closes both streams. The receive stream is left open by [CloseSend]
// so [Reap] can still multiplex on it.
func (c *Channel) Close() error {
	c.send.Close()

	return c.recv.Close() //nolint:wrapcheck
}
