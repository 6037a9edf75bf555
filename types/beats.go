// Package types provides the musical-time value types used across Tempo.
package types

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/xraph/tempo/wire"
)

// microBeatsPerBeat is the fixed-point scale of Beats.
const microBeatsPerBeat = 1_000_000

// Beats represents a musical time quantity as a signed count of microbeats
// (one millionth of a beat). All arithmetic is integer-only; the floating
// point view is derived on demand.
//
// Examples:
//   - NewBeats(1.5) = 1500000 microbeats
//   - MicroBeats(250000) = a quarter beat
type Beats struct {
	micro int64
}

// NewBeats creates a Beats value from a floating-point beat count, rounding
// to the nearest microbeat with ties away from zero. Magnitudes beyond the
// int64 range are not guarded.
func NewBeats(beats float64) Beats {
	return Beats{micro: int64(math.Round(beats * microBeatsPerBeat))}
}

// MicroBeats creates a Beats value from an exact microbeat count.
func MicroBeats(micro int64) Beats { return Beats{micro: micro} }

// ZeroBeats returns zero beats.
func ZeroBeats() Beats { return Beats{} }

// Floating returns the beat count as a float64.
func (b Beats) Floating() float64 { return float64(b.micro) / microBeatsPerBeat }

// MicroBeats returns the exact microbeat count.
func (b Beats) MicroBeats() int64 { return b.micro }

// Arithmetic operations. Overflow wraps.

// Negate returns the negative of b.
func (b Beats) Negate() Beats { return Beats{micro: -b.micro} }

// Abs returns the absolute value. The minimum int64 count wraps to itself.
func (b Beats) Abs() Beats {
	if b.micro < 0 {
		return Beats{micro: -b.micro}
	}
	return b
}

// Add adds two Beats values.
func (b Beats) Add(other Beats) Beats { return Beats{micro: b.micro + other.micro} }

// Subtract subtracts another Beats value.
func (b Beats) Subtract(other Beats) Beats { return Beats{micro: b.micro - other.micro} }

// Mod returns the remainder of b divided by other, with the sign of b.
// A zero divisor yields zero.
func (b Beats) Mod(other Beats) Beats {
	if other.micro == 0 {
		return Beats{}
	}
	return Beats{micro: b.micro % other.micro}
}

// Comparison methods. Ordering is defined on the microbeat count only.

// Compare returns -1, 0 or +1 depending on whether b is less than, equal to
// or greater than other.
func (b Beats) Compare(other Beats) int {
	switch {
	case b.micro < other.micro:
		return -1
	case b.micro > other.micro:
		return 1
	default:
		return 0
	}
}

// Equal returns true if both values hold the same microbeat count.
func (b Beats) Equal(other Beats) bool { return b.micro == other.micro }

// LessThan returns true if b is less than other.
func (b Beats) LessThan(other Beats) bool { return b.micro < other.micro }

// GreaterThan returns true if b is greater than other.
func (b Beats) GreaterThan(other Beats) bool { return b.micro > other.micro }

// LessOrEqual returns true if b is less than or equal to other.
func (b Beats) LessOrEqual(other Beats) bool { return b.micro <= other.micro }

// GreaterOrEqual returns true if b is greater than or equal to other.
func (b Beats) GreaterOrEqual(other Beats) bool { return b.micro >= other.micro }

// Min returns the smaller of two Beats values.
func (b Beats) Min(other Beats) Beats {
	if b.micro < other.micro {
		return b
	}
	return other
}

// Max returns the larger of two Beats values.
func (b Beats) Max(other Beats) Beats {
	if b.micro > other.micro {
		return b
	}
	return other
}

// IsZero returns true if b is zero beats.
func (b Beats) IsZero() bool { return b.micro == 0 }

// IsPositive returns true if b is greater than zero.
func (b Beats) IsPositive() bool { return b.micro > 0 }

// IsNegative returns true if b is less than zero.
func (b Beats) IsNegative() bool { return b.micro < 0 }

// String renders the beat count with six fixed decimals, e.g. "1.500000".
func (b Beats) String() string {
	neg := b.micro < 0
	abs := uint64(b.micro)
	if neg {
		abs = -abs
	}

	s := fmt.Sprintf("%d.%06d", abs/microBeatsPerBeat, abs%microBeatsPerBeat)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (b Beats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MicroBeats int64   `json:"micro_beats"`
		Beats      float64 `json:"beats"`
	}{
		MicroBeats: b.micro,
		Beats:      b.Floating(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. Only micro_beats is read; the
// floating view is informational.
func (b *Beats) UnmarshalJSON(data []byte) error {
	var raw struct {
		MicroBeats int64 `json:"micro_beats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("beats: %w", err)
	}
	*b = Beats{micro: raw.MicroBeats}
	return nil
}

// Wire encoding: the microbeat count as a signed 64-bit integer.

// SizeInByteStream implements wire.Serializable.
func (b Beats) SizeInByteStream() uint32 { return wire.SizeInt64(b.micro) }

// AppendByteStream implements wire.Serializable.
func (b Beats) AppendByteStream(out []byte) []byte { return wire.AppendInt64(out, b.micro) }

// ReadBeats decodes a Beats value from the front of b.
func ReadBeats(b []byte) (Beats, []byte, error) {
	micro, rest, err := wire.ReadInt64(b)
	if err != nil {
		return Beats{}, b, fmt.Errorf("beats: %w", err)
	}
	return Beats{micro: micro}, rest, nil
}

// SumBeats calculates the sum of multiple Beats values.
func SumBeats(values ...Beats) Beats {
	var result Beats
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
