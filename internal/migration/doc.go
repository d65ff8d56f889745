// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package migration implements the save/restore and live migration control
// engine: the save stream preamble, the sender and receiver halves of the
// migration handshake, and the per-invocation orchestrators that compose
// config snapshot, transport and domain control into one outcome.
//
// The handshake synchronizes on fixed byte sentinels. The critical property
// is the point of no return: once the sender has handed the domain over
// with the go message, no code path resumes the source domain automatically
// without first completing the negotiated rollback.
package migration
