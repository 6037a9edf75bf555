package tempomap

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/types"
	"github.com/xraph/tempo/wire"
)

// 120 bpm for 4 beats, then 60 bpm from beat 4, then 240 bpm from beat 8.
func testMap() *Map {
	return &Map{
		Entity: types.NewEntity(),
		ID:     id.NewTempoMapID(),
		Name:   "Intro",
		Slug:   "intro",
		AppID:  "app",
		Segments: []Segment{
			{Start: types.ZeroBeats(), Tempo: types.NewTempo(120)},
			{Start: types.NewBeats(4), Tempo: types.NewTempo(60)},
			{Start: types.NewBeats(8), Tempo: types.NewTempo(240)},
		},
		Metadata: map[string]string{"key": "C", "meter": "4/4"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		valid    bool
	}{
		{"Valid", testMap().Segments, true},
		{"Single segment", []Segment{{Tempo: types.NewTempo(90)}}, true},
		{"Empty", nil, false},
		{"First not at zero", []Segment{{Start: types.NewBeats(1), Tempo: types.NewTempo(90)}}, false},
		{"Zero tempo", []Segment{{Tempo: types.NewTempo(0)}}, false},
		{"Negative tempo", []Segment{{Tempo: types.NewTempo(-120)}}, false},
		{"NaN tempo", []Segment{{Tempo: types.NewTempo(math.NaN())}}, false},
		{"Infinite tempo", []Segment{{Tempo: types.NewTempo(math.Inf(1))}}, false},
		{"Too fast", []Segment{{Tempo: types.NewTempo(1e9)}}, false},
		{"Out of order", []Segment{
			{Tempo: types.NewTempo(120)},
			{Start: types.NewBeats(8), Tempo: types.NewTempo(60)},
			{Start: types.NewBeats(4), Tempo: types.NewTempo(90)},
		}, false},
		{"Duplicate start", []Segment{
			{Tempo: types.NewTempo(120)},
			{Tempo: types.NewTempo(60)},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Map{Segments: tt.segments}
			err := m.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidMap) {
				t.Errorf("expected ErrInvalidMap, got %v", err)
			}
		})
	}
}

func TestTimelines(t *testing.T) {
	tls := testMap().Timelines()
	if len(tls) != 3 {
		t.Fatalf("got %d timelines, want 3", len(tls))
	}

	want := []time.Duration{0, 2 * time.Second, 6 * time.Second}
	for i, tl := range tls {
		if tl.TimeOrigin != want[i] {
			t.Errorf("[%d] TimeOrigin: got %v, want %v", i, tl.TimeOrigin, want[i])
		}
	}
}

func TestCompiledConversions(t *testing.T) {
	c, err := testMap().Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		t     time.Duration
		beats types.Beats
		tempo float64
	}{
		{0, types.ZeroBeats(), 120},
		{time.Second, types.NewBeats(2), 120},
		{2 * time.Second, types.NewBeats(4), 60},
		{4 * time.Second, types.NewBeats(6), 60},
		{6 * time.Second, types.NewBeats(8), 240},
		{7 * time.Second, types.NewBeats(12), 240},
		{-time.Second, types.NewBeats(-2), 120},
	}

	for _, tt := range tests {
		if got := c.BeatsAt(tt.t); !got.Equal(tt.beats) {
			t.Errorf("BeatsAt(%v): got %v, want %v", tt.t, got, tt.beats)
		}
		if got := c.TimeAt(tt.beats); got != tt.t {
			t.Errorf("TimeAt(%v): got %v, want %v", tt.beats, got, tt.t)
		}
		if got := c.TempoAt(tt.beats).BPM(); got != tt.tempo {
			t.Errorf("TempoAt(%v): got %v, want %v", tt.beats, got, tt.tempo)
		}
	}
}

func TestCompiledContinuousAtBoundaries(t *testing.T) {
	m := &Map{Segments: []Segment{
		{Tempo: types.NewTempo(133.7)},
		{Start: types.NewBeats(3.25), Tempo: types.NewTempo(97.3)},
		{Start: types.NewBeats(7), Tempo: types.NewTempo(140)},
	}}
	c, err := m.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for i, tl := range c.Timelines() {
		if got := c.TimeAt(tl.BeatOrigin); got != tl.TimeOrigin {
			t.Errorf("[%d] TimeAt(start): got %v, want %v", i, got, tl.TimeOrigin)
		}
		if got := c.BeatsAt(tl.TimeOrigin); !got.Equal(tl.BeatOrigin) {
			t.Errorf("[%d] BeatsAt(origin): got %v, want %v", i, got, tl.BeatOrigin)
		}
		if i > 0 {
			prev := c.Timelines()[i-1]
			if got := prev.FromBeats(tl.BeatOrigin); got != tl.TimeOrigin {
				t.Errorf("[%d] previous timeline reaches start at %v, want %v", i, got, tl.TimeOrigin)
			}
		}
	}
}

func TestMapConversionsValidate(t *testing.T) {
	m := &Map{}
	if _, err := m.BeatsAt(time.Second); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("BeatsAt: expected ErrInvalidMap, got %v", err)
	}
	if _, err := m.TimeAt(types.NewBeats(1)); !errors.Is(err, ErrInvalidMap) {
		t.Errorf("TimeAt: expected ErrInvalidMap, got %v", err)
	}

	b, err := testMap().BeatsAt(7 * time.Second)
	if err != nil || !b.Equal(types.NewBeats(12)) {
		t.Errorf("BeatsAt: got %v, %v", b, err)
	}
}

func TestSegmentsWire(t *testing.T) {
	segs := []Segment{
		{Tempo: types.NewTempo(120)},
		{Start: types.NewBeats(4), Tempo: types.NewTempo(133.7)},
	}

	b := EncodeSegments(segs)
	if len(b) != 4+2*16 {
		t.Fatalf("length: got %d, want 36", len(b))
	}

	got, err := DecodeSegments(b)
	if err != nil {
		t.Fatalf("DecodeSegments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d segments", len(got))
	}
	for i := range segs {
		if !got[i].Start.Equal(segs[i].Start) {
			t.Errorf("[%d] Start: got %v, want %v", i, got[i].Start, segs[i].Start)
		}
		if got[i].Tempo.MicrosPerBeat() != segs[i].Tempo.MicrosPerBeat() {
			t.Errorf("[%d] MicrosPerBeat: got %v, want %v", i, got[i].Tempo.MicrosPerBeat(), segs[i].Tempo.MicrosPerBeat())
		}
	}

	if _, err := DecodeSegments(b[:len(b)-1]); !errors.Is(err, wire.ErrInsufficientData) {
		t.Errorf("truncated: expected ErrInsufficientData, got %v", err)
	}
	if _, err := DecodeSegments(append(b, 0)); !errors.Is(err, wire.ErrTrailingData) {
		t.Errorf("trailing: expected ErrTrailingData, got %v", err)
	}
}

func TestMapWire(t *testing.T) {
	m := testMap()

	b := wire.Marshal(m)
	if uint32(len(b)) != m.SizeInByteStream() {
		t.Fatalf("size: got %d, want %d", len(b), m.SizeInByteStream())
	}

	got, err := wire.Unmarshal(b, ReadMap)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.ID.String() != m.ID.String() || got.Name != m.Name || got.Slug != m.Slug || got.AppID != m.AppID {
		t.Errorf("fields: got %+v", got)
	}
	if len(got.Segments) != len(m.Segments) {
		t.Fatalf("segments: got %d", len(got.Segments))
	}
	if len(got.Metadata) != 2 || got.Metadata["meter"] != "4/4" {
		t.Errorf("metadata: got %v", got.Metadata)
	}
	if !got.CreatedAt.Equal(m.CreatedAt) || !got.UpdatedAt.Equal(m.UpdatedAt) {
		t.Errorf("timestamps: got %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	// Metadata order does not affect the encoding.
	again := wire.Marshal(m)
	if string(again) != string(b) {
		t.Error("encoding is not deterministic")
	}
}

func TestMapWireZeroValues(t *testing.T) {
	got, err := wire.Unmarshal(wire.Marshal(&Map{}), ReadMap)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.ID.IsNil() || !got.CreatedAt.IsZero() || got.Metadata != nil || len(got.Segments) != 0 {
		t.Errorf("zero map: got %+v", got)
	}
}

func TestReadMapTruncated(t *testing.T) {
	b := wire.Marshal(testMap())
	for _, n := range []int{0, 10, len(b) / 2, len(b) - 1} {
		_, rest, err := ReadMap(b[:n])
		if !errors.Is(err, wire.ErrInsufficientData) {
			t.Errorf("%d bytes: expected ErrInsufficientData, got %v", n, err)
		}
		if len(rest) != n {
			t.Errorf("%d bytes: rest got %d bytes, want input back", n, len(rest))
		}
	}
}
