// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI entry point for guestctl. It handles the
// command table, flag parsing, logging setup and exit code handling.
package cmd
