package audithook_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xraph/tempo"
	audithook "github.com/xraph/tempo/audit_hook"
	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/store/memory"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
)

type captured struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (c *captured) Record(_ context.Context, evt *audithook.AuditEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *captured) actions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, evt := range c.events {
		out[i] = evt.Action
	}
	return out
}

func sampleMap() *tempomap.Map {
	return &tempomap.Map{
		Slug:  "audited",
		AppID: "app_1",
		Segments: []tempomap.Segment{
			{Start: types.ZeroBeats(), Tempo: types.NewTempo(120)},
		},
	}
}

func runLifecycle(t *testing.T, rec audithook.Recorder, opts ...audithook.Option) {
	t.Helper()
	ctx := context.Background()
	e := tempo.New(memory.New(), tempo.WithPlugin(audithook.New(rec, opts...)))
	if err := e.Start(ctx); err != nil {
		t.Fatal(err)
	}

	m := sampleMap()
	if err := e.CreateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}
	if _, err := e.BeatsAt(ctx, m.ID, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateTempoMap(ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteTempoMap(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDefaultActions(t *testing.T) {
	rec := &captured{}
	runLifecycle(t, rec)

	want := []string{
		audithook.ActionEngineStarted,
		audithook.ActionTempoMapCreated,
		audithook.ActionTempoMapUpdated,
		audithook.ActionTempoMapDeleted,
		audithook.ActionEngineStopped,
	}
	if got := rec.actions(); !equal(got, want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}

	created := rec.events[1]
	if created.ID.Prefix() != id.PrefixAuditEvent {
		t.Errorf("event ID prefix = %q, want aud", created.ID.Prefix())
	}
	if created.Resource != audithook.ResourceTempoMap || created.Category != audithook.CategoryCatalogue {
		t.Errorf("created event = %+v", created)
	}
	if created.Metadata["slug"] != "audited" || created.Metadata["segments"] != 1 {
		t.Errorf("metadata = %v", created.Metadata)
	}
	if !strings.HasPrefix(created.ResourceID, "tmap_") {
		t.Errorf("ResourceID = %q", created.ResourceID)
	}
	if rec.events[3].Severity != audithook.SeverityWarning {
		t.Errorf("delete severity = %q", rec.events[3].Severity)
	}
	if created.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestEnabledActions(t *testing.T) {
	rec := &captured{}
	runLifecycle(t, rec, audithook.WithEnabledActions(
		audithook.ActionTempoMapResolved,
		audithook.ActionTempoMapDeleted,
	))

	want := []string{audithook.ActionTempoMapResolved, audithook.ActionTempoMapDeleted}
	if got := rec.actions(); !equal(got, want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	if rec.events[0].Metadata["cache_hit"] != false {
		t.Errorf("resolved metadata = %v", rec.events[0].Metadata)
	}
}

func TestDisabledActions(t *testing.T) {
	rec := &captured{}
	runLifecycle(t, rec, audithook.WithDisabledActions(
		audithook.ActionEngineStarted,
		audithook.ActionEngineStopped,
	))

	want := []string{
		audithook.ActionTempoMapCreated,
		audithook.ActionTempoMapUpdated,
		audithook.ActionTempoMapDeleted,
	}
	if got := rec.actions(); !equal(got, want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
}

func TestRecorderErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	failing := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		return errors.New("backend down")
	})

	ext := audithook.New(failing, audithook.WithLogger(logger))
	if err := ext.OnTempoMapDeleted(context.Background(), id.NewTempoMapID()); err != nil {
		t.Fatalf("OnTempoMapDeleted = %v, want nil", err)
	}
	if !strings.Contains(buf.String(), "backend down") {
		t.Errorf("log = %q", buf.String())
	}
}
