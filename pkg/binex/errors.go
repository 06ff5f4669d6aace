// Package binex implements the BINEX binary GNSS message stream: framing,
// CRC validation, record dispatch and the open-source record payloads
// (ephemerides, monument/geodetic records, PVT solutions), alongside
// byte-preserving handling of closed-source vendor messages.
package binex

import "fmt"

// ErrInvalidSync is returned when a byte expected to be a BINEX sync byte
// does not match any of the four recognised forms.
type ErrInvalidSync struct{ Byte byte }

func (e *ErrInvalidSync) Error() string {
	return fmt.Sprintf("binex: invalid sync byte 0x%02x", e.Byte)
}

// ErrTruncatedMessage is returned when the stream ends before a message's
// payload or CRC has been fully read. A stream ending inside the record ID
// or length field yields the reader's own error instead.
type ErrTruncatedMessage struct {
	Need int
	Got  int
}

func (e *ErrTruncatedMessage) Error() string {
	return fmt.Sprintf("binex: truncated message: need %d bytes, got %d", e.Need, e.Got)
}

// ErrCrcMismatch is returned when a message's trailing CRC does not match
// the CRC computed over its payload.
type ErrCrcMismatch struct {
	Expected uint64
	Computed uint64
}

func (e *ErrCrcMismatch) Error() string {
	return fmt.Sprintf("binex: crc mismatch: expected %#x, computed %#x", e.Expected, e.Computed)
}

// ErrNotEnoughBytes is returned by a fixed-layout record decoder/encoder
// when its buffer is shorter than the record's encoding size.
type ErrNotEnoughBytes struct {
	Need int
	Got  int
}

func (e *ErrNotEnoughBytes) Error() string {
	return fmt.Sprintf("binex: not enough bytes: need %d, got %d", e.Need, e.Got)
}
