// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package savefile

import "errors"

var (
	// ErrBadMagic is returned if a stream does not start with the save
	// file magic.
	ErrBadMagic = errors.New("not a guestctl save stream")

	// ErrByteOrder is returned if the byte order marker does not match.
	// The stream was produced on a host with a foreign byte order.
	ErrByteOrder = errors.New("save stream has foreign byte order")

	// ErrUnknownMandatoryFlags is returned if the header carries mandatory
	// flag bits this version does not implement.
	ErrUnknownMandatoryFlags = errors.New("unknown mandatory flags")

	// ErrTruncatedPayload is returned if the optional payload is too short
	// for the config length it declares.
	ErrTruncatedPayload = errors.New("optional payload truncated")
)
