package types

import (
	"fmt"
	"math"
	"time"

	"github.com/xraph/tempo/wire"
)

// Tempo bounds applied by Timeline.Clamp.
const (
	MinBPM = 20.0
	MaxBPM = 999.0
)

// Timeline maps wall-clock offsets to beats: at TimeOrigin the timeline is at
// BeatOrigin and it advances at Tempo from there, in both directions.
type Timeline struct {
	Tempo      Tempo         `json:"tempo"`
	BeatOrigin Beats         `json:"beat_origin"`
	TimeOrigin time.Duration `json:"time_origin"`
}

// ToBeats returns the beat value at time t.
func (tl Timeline) ToBeats(t time.Duration) Beats {
	return tl.BeatOrigin.Add(tl.Tempo.MicrosToBeats(t - tl.TimeOrigin))
}

// FromBeats returns the time at which the timeline reaches b.
func (tl Timeline) FromBeats(b Beats) time.Duration {
	return tl.TimeOrigin + tl.Tempo.BeatsToMicros(b.Subtract(tl.BeatOrigin))
}

// Clamp returns a copy with the tempo limited to [MinBPM, MaxBPM].
func (tl Timeline) Clamp() Timeline {
	tl.Tempo = NewTempo(math.Min(math.Max(tl.Tempo.BPM(), MinBPM), MaxBPM))
	return tl
}

// Equal returns true if all three components are equal.
func (tl Timeline) Equal(other Timeline) bool {
	return tl.Tempo.Equal(other.Tempo) &&
		tl.BeatOrigin.Equal(other.BeatOrigin) &&
		tl.TimeOrigin == other.TimeOrigin
}

// String returns a human-readable description.
func (tl Timeline) String() string {
	return fmt.Sprintf("%s @ beat %s / %s", tl.Tempo, tl.BeatOrigin, tl.TimeOrigin)
}

// Wire encoding: tempo, beat origin, time origin.

// SizeInByteStream implements wire.Serializable.
func (tl Timeline) SizeInByteStream() uint32 {
	return tl.Tempo.SizeInByteStream() +
		tl.BeatOrigin.SizeInByteStream() +
		wire.SizeDuration(tl.TimeOrigin)
}

// AppendByteStream implements wire.Serializable.
func (tl Timeline) AppendByteStream(out []byte) []byte {
	out = tl.Tempo.AppendByteStream(out)
	out = tl.BeatOrigin.AppendByteStream(out)
	return wire.AppendDuration(out, tl.TimeOrigin)
}

// ReadTimeline decodes a Timeline from the front of b.
func ReadTimeline(b []byte) (Timeline, []byte, error) {
	tempo, rest, err := ReadTempo(b)
	if err != nil {
		return Timeline{}, b, fmt.Errorf("timeline: %w", err)
	}
	beatOrigin, rest, err := ReadBeats(rest)
	if err != nil {
		return Timeline{}, b, fmt.Errorf("timeline: %w", err)
	}
	timeOrigin, rest, err := wire.ReadDuration(rest)
	if err != nil {
		return Timeline{}, b, fmt.Errorf("timeline: time origin: %w", err)
	}
	return Timeline{Tempo: tempo, BeatOrigin: beatOrigin, TimeOrigin: timeOrigin}, rest, nil
}
