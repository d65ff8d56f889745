// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package domctl

import (
	"errors"
	"fmt"
)

var (
	// ErrSuspendTimeout is returned by [Controller.Suspend] if the guest
	// did not acknowledge the suspend request in time. It is distinguished
	// from other suspend failures because the guest may still be running
	// untouched and must not be resumed blindly.
	ErrSuspendTimeout = errors.New("domain suspend timed out")

	// ErrDomainNotFound is returned by [Controller.Lookup] for an unknown
	// domain name or ID.
	ErrDomainNotFound = errors.New("domain not found")
)

// ConfigError wraps any error building the serialized domain configuration.
// It always occurs before any transport I/O.
type ConfigError struct {
	Op  string
	Err error
}

// Error implements the [error] interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("domain config: %s: %v", e.Op, e.Err)
}

// Is implements the [errors.Is] interface.
func (*ConfigError) Is(other error) bool {
	_, ok := other.(*ConfigError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
