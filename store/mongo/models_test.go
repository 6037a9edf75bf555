package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
	"github.com/xraph/tempo/wire"
)

func sampleMap() *tempomap.Map {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &tempomap.Map{
		Entity: types.Entity{CreatedAt: created, UpdatedAt: created.Add(time.Hour)},
		ID:     id.NewTempoMapID(),
		Name:   "Intro",
		Slug:   "intro",
		AppID:  "app_1",
		Segments: []tempomap.Segment{
			{Start: types.ZeroBeats(), Tempo: types.NewTempo(133.7)},
			{Start: types.NewBeats(8), Tempo: types.NewTempo(90)},
		},
		Metadata: map[string]string{"key": "value"},
	}
}

func TestTempoMapModelRoundTrip(t *testing.T) {
	m := sampleMap()

	model := toTempoMapModel(m)
	if model.ID != m.ID.String() {
		t.Errorf("model ID = %q, want %q", model.ID, m.ID.String())
	}
	if len(model.Segments) != 4+2*16 {
		t.Errorf("encoded segments = %d bytes, want 36", len(model.Segments))
	}

	got, err := fromTempoMapModel(model)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != m.ID.String() || got.Slug != m.Slug || got.AppID != m.AppID || got.Name != m.Name {
		t.Errorf("fromTempoMapModel = %+v", got)
	}
	if !got.CreatedAt.Equal(m.CreatedAt) || !got.UpdatedAt.Equal(m.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.Metadata["key"] != "value" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(got.Segments))
	}
	for i, seg := range got.Segments {
		want := m.Segments[i]
		if !seg.Start.Equal(want.Start) {
			t.Errorf("segment %d start = %s, want %s", i, seg.Start, want.Start)
		}
		if seg.Tempo.MicrosPerBeat() != want.Tempo.MicrosPerBeat() {
			t.Errorf("segment %d micros per beat = %v, want %v", i, seg.Tempo.MicrosPerBeat(), want.Tempo.MicrosPerBeat())
		}
	}
}

func TestTempoMapModelEmptyMetadata(t *testing.T) {
	m := sampleMap()
	m.Metadata = nil

	got, err := fromTempoMapModel(toTempoMapModel(m))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Metadata) != 0 {
		t.Errorf("Metadata = %v, want empty", got.Metadata)
	}
}

func TestTempoMapModelBadRows(t *testing.T) {
	model := toTempoMapModel(sampleMap())
	model.Segments = model.Segments[:len(model.Segments)-1]
	if _, err := fromTempoMapModel(model); !errors.Is(err, wire.ErrInsufficientData) {
		t.Errorf("truncated segments error = %v", err)
	}

	model = toTempoMapModel(sampleMap())
	model.ID = "aud_01h455vb4pex5vsknk084sn02q"
	if _, err := fromTempoMapModel(model); err == nil {
		t.Error("expected error for an audit event id")
	}
}

func TestMigrationIndexes(t *testing.T) {
	indexes := migrationIndexes()[colTempoMaps]
	if len(indexes) != 2 {
		t.Fatalf("indexes = %d, want 2", len(indexes))
	}
	if indexes[0].Options == nil {
		t.Error("slug index has no options; it must be unique")
	}
}
