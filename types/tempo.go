package types

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/xraph/tempo/wire"
)

// microsPerMinute is the number of microseconds in one minute.
const microsPerMinute = 60 * 1e6

// Tempo is a rate in beats per minute. It is the exchange rate between
// wall-clock durations and Beats and carries no notion of absolute time.
//
// The bpm value is stored as given. Non-positive or non-finite tempos are not
// rejected; conversions on them produce Inf or NaN results.
type Tempo struct {
	bpm float64
}

// NewTempo creates a Tempo from a beats-per-minute value.
func NewTempo(bpm float64) Tempo { return Tempo{bpm: bpm} }

// TempoFromMicrosPerBeat creates a Tempo from the duration of one beat.
// Precision below one microsecond is dropped. A zero duration yields an
// infinite tempo.
func TempoFromMicrosPerBeat(d time.Duration) Tempo {
	return Tempo{bpm: microsPerMinute / float64(d.Microseconds())}
}

// BPM returns the tempo in beats per minute.
func (t Tempo) BPM() float64 { return t.bpm }

// MicrosPerBeat returns the duration of one beat rounded to the nearest
// microsecond, ties away from zero.
func (t Tempo) MicrosPerBeat() time.Duration {
	return time.Duration(t.microsPerBeat()) * time.Microsecond
}

func (t Tempo) microsPerBeat() int64 {
	return int64(math.Round(microsPerMinute / t.bpm))
}

// MicrosToBeats converts an elapsed duration into beats at this tempo.
//
// The beat length is first rounded to whole microseconds and the quotient is
// then rounded to the nearest microbeat. Both roundings are part of the
// observable behaviour: peers must agree on them bit for bit.
func (t Tempo) MicrosToBeats(d time.Duration) Beats {
	return NewBeats(float64(d.Microseconds()) / float64(t.microsPerBeat()))
}

// BeatsToMicros converts a beat quantity into a duration at this tempo,
// rounded to the nearest microsecond.
func (t Tempo) BeatsToMicros(b Beats) time.Duration {
	micros := math.Round(b.Floating() * float64(t.microsPerBeat()))
	return time.Duration(micros) * time.Microsecond
}

// Comparison methods. Ordering is the plain float ordering of the bpm value.

// Compare returns -1, 0 or +1 depending on whether t is slower than, equal
// to or faster than other.
func (t Tempo) Compare(other Tempo) int {
	switch {
	case t.bpm < other.bpm:
		return -1
	case t.bpm > other.bpm:
		return 1
	default:
		return 0
	}
}

// Equal returns true if both tempos hold exactly the same bpm value.
func (t Tempo) Equal(other Tempo) bool { return t.bpm == other.bpm }

// LessThan returns true if t is slower than other.
func (t Tempo) LessThan(other Tempo) bool { return t.bpm < other.bpm }

// GreaterThan returns true if t is faster than other.
func (t Tempo) GreaterThan(other Tempo) bool { return t.bpm > other.bpm }

// LessOrEqual returns true if t is not faster than other.
func (t Tempo) LessOrEqual(other Tempo) bool { return t.bpm <= other.bpm }

// GreaterOrEqual returns true if t is not slower than other.
func (t Tempo) GreaterOrEqual(other Tempo) bool { return t.bpm >= other.bpm }

// String returns e.g. "120.00 bpm".
func (t Tempo) String() string {
	return fmt.Sprintf("%.2f bpm", t.bpm)
}

// MarshalJSON implements json.Marshaler.
func (t Tempo) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		BPM           float64 `json:"bpm"`
		MicrosPerBeat int64   `json:"micros_per_beat"`
	}{
		BPM:           t.bpm,
		MicrosPerBeat: t.microsPerBeat(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The bpm field is authoritative.
func (t *Tempo) UnmarshalJSON(data []byte) error {
	var raw struct {
		BPM float64 `json:"bpm"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("tempo: %w", err)
	}
	*t = Tempo{bpm: raw.BPM}
	return nil
}

// Wire encoding: the microseconds-per-beat value, not the bpm. Decoding
// rebuilds the tempo from that duration, so the bpm of a decoded value may
// differ slightly from the original while MicrosPerBeat matches exactly.

// SizeInByteStream implements wire.Serializable.
func (t Tempo) SizeInByteStream() uint32 { return wire.SizeDuration(t.MicrosPerBeat()) }

// AppendByteStream implements wire.Serializable.
func (t Tempo) AppendByteStream(out []byte) []byte {
	return wire.AppendDuration(out, t.MicrosPerBeat())
}

// ReadTempo decodes a Tempo from the front of b.
func ReadTempo(b []byte) (Tempo, []byte, error) {
	d, rest, err := wire.ReadDuration(b)
	if err != nil {
		return Tempo{}, b, fmt.Errorf("tempo: %w", err)
	}
	return TempoFromMicrosPerBeat(d), rest, nil
}
