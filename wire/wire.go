// Package wire implements the fixed-width, network byte order encoding used
// for every value that travels between tempo peers.
//
// Each primitive exposes the same three operations: a Size function that
// reports the encoded width, an Append function that writes the value and
// returns the advanced slice, and a Read function that decodes from a byte
// range and returns the value together with the remaining range. Composite
// types gain wire support by expressing themselves in terms of these
// primitives through the Serializable interface.
//
// No framing, length prefixes or versioning happen at this layer except for
// the explicit sequence and string helpers (AppendSlice, AppendString).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ByteOrder is the byte order of every primitive encoding.
var ByteOrder = binary.BigEndian

var (
	// ErrInsufficientData is returned when a byte range is shorter than the
	// encoding being decoded.
	ErrInsufficientData = errors.New("wire: insufficient data")

	// ErrTrailingData is returned by Unmarshal when bytes remain after decoding.
	ErrTrailingData = errors.New("wire: trailing data")
)

// Serializable is implemented by every value with a wire representation.
type Serializable interface {
	// SizeInByteStream returns the number of bytes the encoding occupies.
	SizeInByteStream() uint32
	// AppendByteStream appends the encoding to b and returns the extended slice.
	AppendByteStream(b []byte) []byte
}

// ReadFunc decodes a value of type T from the front of b and returns the
// remaining bytes.
type ReadFunc[T any] func(b []byte) (T, []byte, error)

// Encoded sizes of the primitive types.
const (
	Uint8Size    = 1
	Uint16Size   = 2
	Uint32Size   = 4
	Uint64Size   = 8
	Int64Size    = 8
	DurationSize = 8
)

func need(b []byte, n int, what string) error {
	if len(b) < n {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrInsufficientData, what, n, len(b))
	}
	return nil
}

// ──────────────────────────────────────────────────
// uint8
// ──────────────────────────────────────────────────

// SizeUint8 returns the encoded size of a uint8.
func SizeUint8(uint8) uint32 { return Uint8Size }

// AppendUint8 appends v to b.
func AppendUint8(b []byte, v uint8) []byte { return append(b, v) }

// ReadUint8 decodes a uint8 from the front of b.
func ReadUint8(b []byte) (uint8, []byte, error) {
	if err := need(b, Uint8Size, "uint8"); err != nil {
		return 0, b, err
	}
	return b[0], b[Uint8Size:], nil
}

// ──────────────────────────────────────────────────
// uint16
// ──────────────────────────────────────────────────

// SizeUint16 returns the encoded size of a uint16.
func SizeUint16(uint16) uint32 { return Uint16Size }

// AppendUint16 appends v to b in network byte order.
func AppendUint16(b []byte, v uint16) []byte { return ByteOrder.AppendUint16(b, v) }

// ReadUint16 decodes a uint16 from the front of b.
func ReadUint16(b []byte) (uint16, []byte, error) {
	if err := need(b, Uint16Size, "uint16"); err != nil {
		return 0, b, err
	}
	return ByteOrder.Uint16(b), b[Uint16Size:], nil
}

// ──────────────────────────────────────────────────
// uint32
// ──────────────────────────────────────────────────

// SizeUint32 returns the encoded size of a uint32.
func SizeUint32(uint32) uint32 { return Uint32Size }

// AppendUint32 appends v to b in network byte order.
func AppendUint32(b []byte, v uint32) []byte { return ByteOrder.AppendUint32(b, v) }

// ReadUint32 decodes a uint32 from the front of b.
func ReadUint32(b []byte) (uint32, []byte, error) {
	if err := need(b, Uint32Size, "uint32"); err != nil {
		return 0, b, err
	}
	return ByteOrder.Uint32(b), b[Uint32Size:], nil
}

// ──────────────────────────────────────────────────
// uint64
// ──────────────────────────────────────────────────

// SizeUint64 returns the encoded size of a uint64.
func SizeUint64(uint64) uint32 { return Uint64Size }

// AppendUint64 appends v to b in network byte order.
func AppendUint64(b []byte, v uint64) []byte { return ByteOrder.AppendUint64(b, v) }

// ReadUint64 decodes a uint64 from the front of b.
func ReadUint64(b []byte) (uint64, []byte, error) {
	if err := need(b, Uint64Size, "uint64"); err != nil {
		return 0, b, err
	}
	return ByteOrder.Uint64(b), b[Uint64Size:], nil
}

// ──────────────────────────────────────────────────
// int64
// ──────────────────────────────────────────────────

// SizeInt64 returns the encoded size of an int64.
func SizeInt64(int64) uint32 { return Int64Size }

// AppendInt64 appends the two's-complement encoding of v to b.
func AppendInt64(b []byte, v int64) []byte { return ByteOrder.AppendUint64(b, uint64(v)) }

// ReadInt64 decodes an int64 from the front of b.
func ReadInt64(b []byte) (int64, []byte, error) {
	if err := need(b, Int64Size, "int64"); err != nil {
		return 0, b, err
	}
	return int64(ByteOrder.Uint64(b)), b[Int64Size:], nil
}

// ──────────────────────────────────────────────────
// time.Duration (signed microseconds)
// ──────────────────────────────────────────────────

// SizeDuration returns the encoded size of a duration.
func SizeDuration(time.Duration) uint32 { return DurationSize }

// AppendDuration appends d as a signed 64-bit microsecond count.
// Precision below one microsecond is dropped.
func AppendDuration(b []byte, d time.Duration) []byte {
	return AppendInt64(b, d.Microseconds())
}

// ReadDuration decodes a microsecond count from the front of b.
func ReadDuration(b []byte) (time.Duration, []byte, error) {
	v, rest, err := ReadInt64(b)
	if err != nil {
		return 0, b, fmt.Errorf("duration: %w", err)
	}
	return time.Duration(v) * time.Microsecond, rest, nil
}

// ──────────────────────────────────────────────────
// Sequences
// ──────────────────────────────────────────────────

// SizeSlice returns the encoded size of a length-prefixed sequence.
func SizeSlice[T Serializable](vs []T) uint32 {
	size := uint32(Uint32Size)
	for _, v := range vs {
		size += v.SizeInByteStream()
	}
	return size
}

// AppendSlice appends a uint32 element count followed by each element.
func AppendSlice[T Serializable](b []byte, vs []T) []byte {
	b = AppendUint32(b, uint32(len(vs)))
	for _, v := range vs {
		b = v.AppendByteStream(b)
	}
	return b
}

// ReadSlice decodes a sequence written by AppendSlice using read for each element.
func ReadSlice[T any](b []byte, read ReadFunc[T]) ([]T, []byte, error) {
	n, rest, err := ReadUint32(b)
	if err != nil {
		return nil, b, fmt.Errorf("sequence length: %w", err)
	}

	// The count is untrusted; never allocate more than the range could hold.
	capacity := int(n)
	if capacity > len(rest) {
		capacity = len(rest)
	}
	out := make([]T, 0, capacity)
	for i := uint32(0); i < n; i++ {
		var v T
		v, rest, err = read(rest)
		if err != nil {
			return nil, b, fmt.Errorf("sequence element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, rest, nil
}

// ──────────────────────────────────────────────────
// Strings
// ──────────────────────────────────────────────────

// SizeString returns the encoded size of a length-prefixed string.
func SizeString(s string) uint32 { return Uint32Size + uint32(len(s)) }

// AppendString appends a uint32 byte count followed by the bytes of s.
func AppendString(b []byte, s string) []byte {
	b = AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// ReadString decodes a string written by AppendString.
func ReadString(b []byte) (string, []byte, error) {
	n, rest, err := ReadUint32(b)
	if err != nil {
		return "", b, fmt.Errorf("string length: %w", err)
	}
	if uint64(len(rest)) < uint64(n) {
		return "", b, fmt.Errorf("%w: string needs %d bytes, have %d", ErrInsufficientData, n, len(rest))
	}
	return string(rest[:n]), rest[n:], nil
}

// ──────────────────────────────────────────────────
// Whole-buffer helpers
// ──────────────────────────────────────────────────

// Marshal returns the encoding of v in a freshly allocated buffer.
func Marshal(v Serializable) []byte {
	return v.AppendByteStream(make([]byte, 0, v.SizeInByteStream()))
}

// Unmarshal decodes b with read and requires that every byte is consumed.
func Unmarshal[T any](b []byte, read ReadFunc[T]) (T, error) {
	v, rest, err := read(b)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(rest) != 0 {
		var zero T
		return zero, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(rest))
	}
	return v, nil
}
