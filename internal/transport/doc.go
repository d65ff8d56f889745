// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transport provides the migration transport channel: a spawned
// child process, typically a remote login tool re-invoking the receiver
// side, bridged to the local end by a pair of pipes. The channel is an
// opaque bidirectional byte pipe; it imposes no framing of its own.
package transport
