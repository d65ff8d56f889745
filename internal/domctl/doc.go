// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package domctl is the boundary to the domain-control layer that performs
// the actual capture, restore, pause, resume, rename and destroy operations
// on a guest. The migration engine only ever talks to the [Controller]
// interface; the bundled implementation drives a hypervisor helper binary
// with redirected stdio.
package domctl
