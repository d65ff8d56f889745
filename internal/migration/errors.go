// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import "errors"

// ErrRemoteStartup is returned when the receiver reported that it could not
// start its copy of the domain. The sender has completed the negotiated
// rollback by the time this surfaces.
var ErrRemoteStartup = errors.New("target reported startup failure")

// ProtocolError reports that the migration stream contained unexpected data
// instead of an expected control sentinel.
type ProtocolError struct {
	What string
}

// Error implements the [error] interface.
func (e *ProtocolError) Error() string {
	return "migration stream contained unexpected data instead of " + e.What
}

// Is implements the [errors.Is] interface.
func (*ProtocolError) Is(other error) bool {
	_, ok := other.(*ProtocolError)
	return ok
}
