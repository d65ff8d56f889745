// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package savefile implements the fixed header that prefixes every domain
// save stream, whether it is written to a file or onto a migration channel.
// The header carries the serialized domain configuration as an optional
// payload; the hypervisor's own device and memory state stream follows out
// of band.
package savefile
