// SPDX-FileCopyrightText: 2026 The guestctl authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package savefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

// fileMagic identifies a guestctl save stream. The trailing bytes catch
// streams that were mangled by text-mode transfers.
const fileMagic = "guestctl saved domain, v2\n \x00 \r"

// byteOrderMark is written right after the magic. A consumer that reads a
// different value is looking at a stream produced with a foreign byte order
// and must reject it.
const byteOrderMark uint32 = 0x01020304

// Mandatory flag bits. A consumer must reject a stream carrying mandatory
// bits it does not know.
const (
	// FlagStreamV2 marks the v2 domain state stream format.
	FlagStreamV2 uint32 = 1 << 0
	// FlagJSONConfig marks that the optional payload carries a serialized
	// JSON domain configuration.
	FlagJSONConfig uint32 = 1 << 1

	mandatoryMask = FlagStreamV2 | FlagJSONConfig
)

// Header is the fixed save stream header. On the wire it is preceded by
// [fileMagic] and [byteOrderMark] and followed by exactly OptionalLen bytes
// of optional payload.
type Header struct {
	MandatoryFlags uint32
	OptionalFlags  uint32
	OptionalLen    uint32
}

// WriteConfig writes the save stream header followed by the optional
// payload carrying the given serialized domain configuration. The config
// bytes are expected to include their terminating NUL. Header and payload
// are assembled into a single buffer and written as one framing unit. Any
// write failure is final, there is no retry.
func WriteConfig(w io.Writer, label string, config []byte) error {
	hdr := Header{
		MandatoryFlags: FlagStreamV2,
	}

	if len(config) > 0 {
		hdr.MandatoryFlags |= FlagJSONConfig
		hdr.OptionalLen = 4 + uint32(len(config)) //nolint:gosec
	}

	buf := make([]byte, 0, len(fileMagic)+16+len(config)+4)
	buf = append(buf, fileMagic...)
	buf = binary.LittleEndian.AppendUint32(buf, byteOrderMark)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.MandatoryFlags)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.OptionalFlags)
	buf = binary.LittleEndian.AppendUint32(buf, hdr.OptionalLen)

	if len(config) > 0 {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(config)))
		buf = append(buf, config...)
	}

	err := writeFull(w, buf)
	if err != nil {
		return fmt.Errorf("write save header to %s: %w", label, err)
	}

	slog.Info("Wrote save stream header",
		slog.String("target", label),
		slog.String("mandatory_flags", fmt.Sprintf("%#x", hdr.MandatoryFlags)),
		slog.String("optional_flags", fmt.Sprintf("%#x", hdr.OptionalFlags)),
		slog.Uint64("optional_len", uint64(hdr.OptionalLen)))

	return nil
}

// ReadConfig reads and validates the save stream header and returns it
// together with the embedded serialized domain configuration, if any. It
// consumes exactly the header and its optional payload, leaving the reader
// positioned at the start of the domain state stream.
func ReadConfig(r io.Reader) (Header, []byte, error) {
	var hdr Header

	fixed := make([]byte, len(fileMagic)+16)

	_, err := io.ReadFull(r, fixed)
	if err != nil {
		return hdr, nil, fmt.Errorf("read save header: %w", err)
	}

	if string(fixed[:len(fileMagic)]) != fileMagic {
		return hdr, nil, ErrBadMagic
	}

	rest := fixed[len(fileMagic):]
	if binary.LittleEndian.Uint32(rest) != byteOrderMark {
		return hdr, nil, ErrByteOrder
	}

	hdr.MandatoryFlags = binary.LittleEndian.Uint32(rest[4:])
	hdr.OptionalFlags = binary.LittleEndian.Uint32(rest[8:])
	hdr.OptionalLen = binary.LittleEndian.Uint32(rest[12:])

	if hdr.MandatoryFlags&^mandatoryMask != 0 {
		return hdr, nil, fmt.Errorf("%w: %#x",
			ErrUnknownMandatoryFlags, hdr.MandatoryFlags&^mandatoryMask)
	}

	optional := make([]byte, hdr.OptionalLen)

	_, err = io.ReadFull(r, optional)
	if err != nil {
		return hdr, nil, fmt.Errorf("read optional payload: %w", err)
	}

	if hdr.MandatoryFlags&FlagJSONConfig == 0 {
		return hdr, nil, nil
	}

	if len(optional) < 4 {
		return hdr, nil, ErrTruncatedPayload
	}

	configLen := binary.LittleEndian.Uint32(optional)
	if uint64(configLen) > uint64(len(optional)-4) {
		return hdr, nil, ErrTruncatedPayload
	}

	return hdr, optional[4 : 4+configLen], nil
}

// writeFull writes all of buf. Interrupted writes are restarted by the
// runtime, so anything short that comes back without an error is a short
// write on the writer's part.
func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}

		if n == 0 {
			return io.ErrShortWrite
		}

		buf = buf[n:]
	}

	return nil
}
