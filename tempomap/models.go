// Package tempomap models named, piecewise-constant tempo maps: a sequence of
// segments, each holding a tempo from its start beat until the next segment
// begins. A map compiles into one Timeline per segment, which converts
// between wall-clock offsets and beats across tempo changes.
package tempomap

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/types"
	"github.com/xraph/tempo/wire"
)

// ErrInvalidMap is wrapped by every validation failure.
var ErrInvalidMap = errors.New("tempomap: invalid map")

// Segment starts a new tempo at a beat position.
type Segment struct {
	Start types.Beats `json:"start"`
	Tempo types.Tempo `json:"tempo"`
}

// SizeInByteStream implements wire.Serializable.
func (s Segment) SizeInByteStream() uint32 {
	return s.Start.SizeInByteStream() + s.Tempo.SizeInByteStream()
}

// AppendByteStream implements wire.Serializable.
func (s Segment) AppendByteStream(b []byte) []byte {
	b = s.Start.AppendByteStream(b)
	return s.Tempo.AppendByteStream(b)
}

// ReadSegment decodes a Segment from the front of b.
func ReadSegment(b []byte) (Segment, []byte, error) {
	start, rest, err := types.ReadBeats(b)
	if err != nil {
		return Segment{}, b, fmt.Errorf("segment start: %w", err)
	}
	tempo, rest, err := types.ReadTempo(rest)
	if err != nil {
		return Segment{}, b, fmt.Errorf("segment: %w", err)
	}
	return Segment{Start: start, Tempo: tempo}, rest, nil
}

// Map is a stored tempo map.
type Map struct {
	types.Entity
	ID       id.TempoMapID     `json:"id"`
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	AppID    string            `json:"app_id"`
	Segments []Segment         `json:"segments"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks that the segments describe a usable map: at least one
// segment, the first starting at beat zero, strictly increasing starts and
// finite positive tempos.
func (m *Map) Validate() error {
	if len(m.Segments) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidMap)
	}
	if !m.Segments[0].Start.IsZero() {
		return fmt.Errorf("%w: first segment starts at %s, not zero", ErrInvalidMap, m.Segments[0].Start)
	}

	for i, seg := range m.Segments {
		bpm := seg.Tempo.BPM()
		if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
			return fmt.Errorf("%w: segment %d has tempo %v", ErrInvalidMap, i, bpm)
		}
		if seg.Tempo.MicrosPerBeat() <= 0 {
			return fmt.Errorf("%w: segment %d tempo %v is too fast", ErrInvalidMap, i, bpm)
		}
		if i > 0 && !seg.Start.GreaterThan(m.Segments[i-1].Start) {
			return fmt.Errorf("%w: segment %d starts at %s, not after %s",
				ErrInvalidMap, i, seg.Start, m.Segments[i-1].Start)
		}
	}
	return nil
}

// Timelines returns one Timeline per segment. The first starts at time zero;
// each later one starts when the previous timeline reaches its start beat.
func (m *Map) Timelines() []types.Timeline {
	out := make([]types.Timeline, 0, len(m.Segments))
	for i, seg := range m.Segments {
		tl := types.Timeline{Tempo: seg.Tempo, BeatOrigin: seg.Start}
		if i > 0 {
			tl.TimeOrigin = out[i-1].FromBeats(seg.Start)
		}
		out = append(out, tl)
	}
	return out
}

// Compile validates m and returns its compiled form.
func (m *Map) Compile() (*Compiled, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Compiled{timelines: m.Timelines()}, nil
}

// BeatsAt returns the beat position at time offset t.
func (m *Map) BeatsAt(t time.Duration) (types.Beats, error) {
	c, err := m.Compile()
	if err != nil {
		return types.Beats{}, err
	}
	return c.BeatsAt(t), nil
}

// TimeAt returns the time offset at which the map reaches b.
func (m *Map) TimeAt(b types.Beats) (time.Duration, error) {
	c, err := m.Compile()
	if err != nil {
		return 0, err
	}
	return c.TimeAt(b), nil
}

// ──────────────────────────────────────────────────
// Compiled maps
// ──────────────────────────────────────────────────

// Compiled is a validated map reduced to its timelines. It is immutable and
// safe for concurrent use.
type Compiled struct {
	timelines []types.Timeline
}

// Timelines returns a copy of the compiled timelines.
func (c *Compiled) Timelines() []types.Timeline {
	return slices.Clone(c.timelines)
}

// TimelineAt returns the timeline in effect at beat b. Positions before the
// first segment use the first timeline.
func (c *Compiled) TimelineAt(b types.Beats) types.Timeline {
	i := sort.Search(len(c.timelines), func(i int) bool {
		return c.timelines[i].BeatOrigin.GreaterThan(b)
	})
	return c.timelines[max(i-1, 0)]
}

// timelineAtTime returns the timeline in effect at time offset t.
func (c *Compiled) timelineAtTime(t time.Duration) types.Timeline {
	i := sort.Search(len(c.timelines), func(i int) bool {
		return c.timelines[i].TimeOrigin > t
	})
	return c.timelines[max(i-1, 0)]
}

// TempoAt returns the tempo in effect at beat b.
func (c *Compiled) TempoAt(b types.Beats) types.Tempo { return c.TimelineAt(b).Tempo }

// BeatsAt returns the beat position at time offset t.
func (c *Compiled) BeatsAt(t time.Duration) types.Beats { return c.timelineAtTime(t).ToBeats(t) }

// TimeAt returns the time offset at which the map reaches b.
func (c *Compiled) TimeAt(b types.Beats) time.Duration { return c.TimelineAt(b).FromBeats(b) }

// ──────────────────────────────────────────────────
// Wire encoding
// ──────────────────────────────────────────────────

// EncodeSegments returns the length-prefixed wire encoding of segs.
func EncodeSegments(segs []Segment) []byte {
	return wire.AppendSlice(make([]byte, 0, wire.SizeSlice(segs)), segs)
}

// DecodeSegments decodes the output of EncodeSegments. Tempos come back
// rebuilt from their microseconds per beat.
func DecodeSegments(b []byte) ([]Segment, error) {
	segs, err := wire.Unmarshal(b, readSegments)
	if err != nil {
		return nil, fmt.Errorf("tempomap: decode segments: %w", err)
	}
	return segs, nil
}

func readSegments(b []byte) ([]Segment, []byte, error) {
	return wire.ReadSlice(b, ReadSegment)
}

// SizeInByteStream implements wire.Serializable.
func (m *Map) SizeInByteStream() uint32 {
	size := m.ID.SizeInByteStream() +
		wire.SizeString(m.Name) +
		wire.SizeString(m.Slug) +
		wire.SizeString(m.AppID) +
		wire.SizeSlice(m.Segments) +
		wire.Uint32Size
	for k, v := range m.Metadata {
		size += wire.SizeString(k) + wire.SizeString(v)
	}
	return size + 2*wire.Int64Size
}

// AppendByteStream implements wire.Serializable. Metadata is written in key
// order so equal maps encode identically.
func (m *Map) AppendByteStream(b []byte) []byte {
	b = m.ID.AppendByteStream(b)
	b = wire.AppendString(b, m.Name)
	b = wire.AppendString(b, m.Slug)
	b = wire.AppendString(b, m.AppID)
	b = wire.AppendSlice(b, m.Segments)

	b = wire.AppendUint32(b, uint32(len(m.Metadata)))
	for _, k := range slices.Sorted(maps.Keys(m.Metadata)) {
		b = wire.AppendString(b, k)
		b = wire.AppendString(b, m.Metadata[k])
	}

	b = wire.AppendInt64(b, unixNano(m.CreatedAt))
	return wire.AppendInt64(b, unixNano(m.UpdatedAt))
}

// Timestamps travel as Unix nanoseconds; 0 stands for the zero time.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// ReadMap decodes a Map written by AppendByteStream.
func ReadMap(b []byte) (*Map, []byte, error) {
	r := wire.NewReader(b)
	m := &Map{}

	var err error
	if m.ID, err = wire.Read(r, id.Read); err != nil {
		return nil, b, fmt.Errorf("tempomap: id: %w", err)
	}
	for _, field := range []*string{&m.Name, &m.Slug, &m.AppID} {
		if *field, err = wire.Read(r, wire.ReadString); err != nil {
			return nil, b, fmt.Errorf("tempomap: %w", err)
		}
	}
	if m.Segments, err = wire.Read(r, readSegments); err != nil {
		return nil, b, fmt.Errorf("tempomap: %w", err)
	}

	n, err := r.Uint32()
	if err != nil {
		return nil, b, fmt.Errorf("tempomap: metadata length: %w", err)
	}
	if n > 0 {
		m.Metadata = make(map[string]string, min(int(n), r.Remaining()))
	}
	for i := uint32(0); i < n; i++ {
		k, err := wire.Read(r, wire.ReadString)
		if err != nil {
			return nil, b, fmt.Errorf("tempomap: metadata key %d: %w", i, err)
		}
		v, err := wire.Read(r, wire.ReadString)
		if err != nil {
			return nil, b, fmt.Errorf("tempomap: metadata %q: %w", k, err)
		}
		m.Metadata[k] = v
	}

	created, err := r.Int64()
	if err != nil {
		return nil, b, fmt.Errorf("tempomap: created_at: %w", err)
	}
	updated, err := r.Int64()
	if err != nil {
		return nil, b, fmt.Errorf("tempomap: updated_at: %w", err)
	}
	m.CreatedAt = fromUnixNano(created)
	m.UpdatedAt = fromUnixNano(updated)

	return m, r.Rest(), nil
}
