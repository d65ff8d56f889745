// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package transport

// SetupError wraps any pipe or process creation failure while spawning the
// transport child. No domain state has been touched when it is returned.
type SetupError struct {
	Err error
}

// Error implements the [error] interface.
func (e *SetupError) Error() string {
	return "transport setup: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*SetupError) Is(other error) bool {
	_, ok := other.(*SetupError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SetupError) Unwrap() error {
	return e.Err
}
