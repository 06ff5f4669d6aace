// Package binary implements the endianness-parameterised fixed-width
// integer/float codecs and the BINEX variable-length integer (BNXI) used
// by the BINEX stream codec.
package binary

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ErrNotEnoughBytes is returned when a buffer is shorter than the fixed
// width required to decode a value.
type ErrNotEnoughBytes struct {
	Need int
	Got  int
}

func (e *ErrNotEnoughBytes) Error() string {
	return fmt.Sprintf("binary: not enough bytes: need %d, got %d", e.Need, e.Got)
}

func need(buf []byte, n int) error {
	if len(buf) < n {
		return &ErrNotEnoughBytes{Need: n, Got: len(buf)}
	}
	return nil
}

// ByteOrder selects big- or little-endian decoding, mirroring the BINEX
// sync byte's endianness flag (spec.md §3.5/§6.2).
type ByteOrder = binary.ByteOrder

// ReadU8 decodes a single unsigned byte.
func ReadU8(buf []byte) (uint8, error) {
	if err := need(buf, 1); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadI8 decodes a single signed byte.
func ReadI8(buf []byte) (int8, error) {
	v, err := ReadU8(buf)
	return int8(v), err
}

// ReadU16 decodes a 16-bit unsigned integer at the given endianness.
func ReadU16(buf []byte, order ByteOrder) (uint16, error) {
	if err := need(buf, 2); err != nil {
		return 0, err
	}
	return order.Uint16(buf), nil
}

// ReadI16 decodes a 16-bit signed integer.
func ReadI16(buf []byte, order ByteOrder) (int16, error) {
	v, err := ReadU16(buf, order)
	return int16(v), err
}

// ReadU32 decodes a 32-bit unsigned integer.
func ReadU32(buf []byte, order ByteOrder) (uint32, error) {
	if err := need(buf, 4); err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

// ReadI32 decodes a 32-bit signed integer.
func ReadI32(buf []byte, order ByteOrder) (int32, error) {
	v, err := ReadU32(buf, order)
	return int32(v), err
}

// ReadF32 decodes an IEEE-754 single-precision float.
func ReadF32(buf []byte, order ByteOrder) (float32, error) {
	v, err := ReadU32(buf, order)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 decodes an IEEE-754 double-precision float.
func ReadF64(buf []byte, order ByteOrder) (float64, error) {
	if err := need(buf, 8); err != nil {
		return 0, err
	}
	bits := order.Uint64(buf)
	return math.Float64frombits(bits), nil
}

// PutU8 encodes a single unsigned byte.
func PutU8(buf []byte, v uint8) error {
	if err := need(buf, 1); err != nil {
		return err
	}
	buf[0] = v
	return nil
}

// PutI8 encodes a single signed byte.
func PutI8(buf []byte, v int8) error {
	return PutU8(buf, uint8(v))
}

// PutU16 encodes a 16-bit unsigned integer.
func PutU16(buf []byte, v uint16, order ByteOrder) error {
	if err := need(buf, 2); err != nil {
		return err
	}
	order.PutUint16(buf, v)
	return nil
}

// PutI16 encodes a 16-bit signed integer.
func PutI16(buf []byte, v int16, order ByteOrder) error {
	return PutU16(buf, uint16(v), order)
}

// PutU32 encodes a 32-bit unsigned integer.
func PutU32(buf []byte, v uint32, order ByteOrder) error {
	if err := need(buf, 4); err != nil {
		return err
	}
	order.PutUint32(buf, v)
	return nil
}

// PutI32 encodes a 32-bit signed integer.
func PutI32(buf []byte, v int32, order ByteOrder) error {
	return PutU32(buf, uint32(v), order)
}

// PutF32 encodes an IEEE-754 single-precision float.
func PutF32(buf []byte, v float32, order ByteOrder) error {
	return PutU32(buf, math.Float32bits(v), order)
}

// PutF64 encodes an IEEE-754 double-precision float.
func PutF64(buf []byte, v float64, order ByteOrder) error {
	if err := need(buf, 8); err != nil {
		return err
	}
	order.PutUint64(buf, math.Float64bits(v))
	return nil
}
