package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tempo"
	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
)

func newMap(slug, appID string, bpm float64) *tempomap.Map {
	return &tempomap.Map{
		Entity: types.NewEntity(),
		ID:     id.NewTempoMapID(),
		Name:   slug,
		Slug:   slug,
		AppID:  appID,
		Segments: []tempomap.Segment{
			{Start: types.ZeroBeats(), Tempo: types.NewTempo(bpm)},
		},
		Metadata: map[string]string{"key": "value"},
	}
}

func TestCreateAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	m := newMap("intro", "app", 120)
	if err := s.CreateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTempoMap(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != m.ID.String() || got.Slug != "intro" || got.Metadata["key"] != "value" {
		t.Errorf("GetTempoMap = %+v", got)
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, m.CreatedAt)
	}

	// Stored values are copies.
	got.Name = "changed"
	again, err := s.GetTempoMap(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "intro" {
		t.Errorf("Name = %q, stored row was mutated", again.Name)
	}
}

func TestTempoRoundTripIsLossy(t *testing.T) {
	s := New()
	ctx := context.Background()

	m := newMap("odd", "app", 133.7)
	if err := s.CreateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTempoMap(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}

	bpm := got.Segments[0].Tempo
	if bpm.MicrosPerBeat() != m.Segments[0].Tempo.MicrosPerBeat() {
		t.Errorf("MicrosPerBeat = %v, want %v", bpm.MicrosPerBeat(), m.Segments[0].Tempo.MicrosPerBeat())
	}
	if bpm.BPM() == 133.7 {
		t.Error("bpm survived the round trip exactly; rows should hold microseconds per beat")
	}
}

func TestDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	m := newMap("intro", "app", 120)
	if err := s.CreateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}

	if err := s.CreateTempoMap(ctx, m); !errors.Is(err, tempo.ErrAlreadyExists) {
		t.Errorf("same ID error = %v", err)
	}
	if err := s.CreateTempoMap(ctx, newMap("intro", "app", 90)); !errors.Is(err, tempo.ErrAlreadyExists) {
		t.Errorf("same slug error = %v", err)
	}
	if err := s.CreateTempoMap(ctx, newMap("intro", "other", 90)); err != nil {
		t.Errorf("same slug in another app: %v", err)
	}
}

func TestGetBySlug(t *testing.T) {
	s := New()
	ctx := context.Background()

	m := newMap("verse", "app", 100)
	if err := s.CreateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTempoMapBySlug(ctx, "verse", "app")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != m.ID.String() {
		t.Errorf("ID = %s, want %s", got.ID, m.ID)
	}
	if _, err := s.GetTempoMapBySlug(ctx, "verse", "other"); !errors.Is(err, tempo.ErrTempoMapNotFound) {
		t.Errorf("wrong app error = %v", err)
	}
}

func TestList(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	// Insert out of creation order.
	for _, i := range []int{2, 0, 1} {
		m := newMap(string(rune('a'+i)), "app", 120)
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.CreateTempoMap(ctx, m); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, m.ID.String())
	}
	if err := s.CreateTempoMap(ctx, newMap("z", "other", 120)); err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{ids[1], ids[2], ids[0]}

	tests := []struct {
		name string
		opts tempomap.ListOpts
		want []string
	}{
		{"all", tempomap.ListOpts{}, wantOrder},
		{"limit", tempomap.ListOpts{Limit: 2}, wantOrder[:2]},
		{"offset", tempomap.ListOpts{Offset: 1}, wantOrder[1:]},
		{"page", tempomap.ListOpts{Limit: 1, Offset: 1}, wantOrder[1:2]},
		{"past end", tempomap.ListOpts{Offset: 5}, nil},
		{"negative limit", tempomap.ListOpts{Limit: -1}, wantOrder},
		{"negative offset", tempomap.ListOpts{Offset: -1, Limit: 2}, wantOrder[:2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTempoMaps(ctx, "app", tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID.String() != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := newMap("a", "app", 120)
	b := newMap("b", "app", 120)
	for _, m := range []*tempomap.Map{a, b} {
		if err := s.CreateTempoMap(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	a.Segments[0].Tempo = types.NewTempo(60)
	if err := s.UpdateTempoMap(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTempoMap(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Segments[0].Tempo.BPM() != 60 {
		t.Errorf("bpm = %v, want 60", got.Segments[0].Tempo.BPM())
	}

	a.Slug = "b"
	if err := s.UpdateTempoMap(ctx, a); !errors.Is(err, tempo.ErrAlreadyExists) {
		t.Errorf("slug clash error = %v", err)
	}

	if err := s.UpdateTempoMap(ctx, newMap("c", "app", 120)); !errors.Is(err, tempo.ErrTempoMapNotFound) {
		t.Errorf("missing map error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	m := newMap("a", "app", 120)
	if err := s.CreateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTempoMap(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTempoMap(ctx, m.ID); !errors.Is(err, tempo.ErrTempoMapNotFound) {
		t.Errorf("get after delete error = %v", err)
	}
	if err := s.DeleteTempoMap(ctx, m.ID); !errors.Is(err, tempo.ErrTempoMapNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestClosed(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	m := newMap("a", "app", 120)
	checks := map[string]error{
		"ping":   s.Ping(ctx),
		"create": s.CreateTempoMap(ctx, m),
		"update": s.UpdateTempoMap(ctx, m),
		"delete": s.DeleteTempoMap(ctx, m.ID),
	}
	_, checks["get"] = s.GetTempoMap(ctx, m.ID)
	_, checks["slug"] = s.GetTempoMapBySlug(ctx, "a", "app")
	_, checks["list"] = s.ListTempoMaps(ctx, "app", tempomap.ListOpts{})

	for op, err := range checks {
		if !errors.Is(err, tempo.ErrStoreClosed) {
			t.Errorf("%s after Close = %v, want ErrStoreClosed", op, err)
		}
	}
}
