// Package audithook bridges Tempo lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit backend. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/plugin"
	"github.com/xraph/tempo/tempomap"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnInit             = (*Extension)(nil)
	_ plugin.OnShutdown         = (*Extension)(nil)
	_ plugin.OnTempoMapCreated  = (*Extension)(nil)
	_ plugin.OnTempoMapUpdated  = (*Extension)(nil)
	_ plugin.OnTempoMapDeleted  = (*Extension)(nil)
	_ plugin.OnTempoMapResolved = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audit trail entry.
type AuditEvent struct {
	ID         id.AuditEventID `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	Category   string          `json:"category"`
	ResourceID string          `json:"resource_id,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Outcome    string          `json:"outcome"`
	Severity   string          `json:"severity"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Tempo lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = default actions
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Engine lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit implements plugin.OnInit.
func (e *Extension) OnInit(ctx context.Context, _ any) error {
	return e.record(ctx, ActionEngineStarted, SeverityInfo, OutcomeSuccess,
		ResourceEngine, "", CategoryLifecycle,
	)
}

// OnShutdown implements plugin.OnShutdown.
func (e *Extension) OnShutdown(ctx context.Context) error {
	return e.record(ctx, ActionEngineStopped, SeverityInfo, OutcomeSuccess,
		ResourceEngine, "", CategoryLifecycle,
	)
}

// ──────────────────────────────────────────────────
// Tempo map hooks
// ──────────────────────────────────────────────────

// OnTempoMapCreated implements plugin.OnTempoMapCreated.
func (e *Extension) OnTempoMapCreated(ctx context.Context, m *tempomap.Map) error {
	return e.record(ctx, ActionTempoMapCreated, SeverityInfo, OutcomeSuccess,
		ResourceTempoMap, m.ID.String(), CategoryCatalogue,
		"slug", m.Slug,
		"app_id", m.AppID,
		"segments", len(m.Segments),
	)
}

// OnTempoMapUpdated implements plugin.OnTempoMapUpdated.
func (e *Extension) OnTempoMapUpdated(ctx context.Context, oldMap, newMap *tempomap.Map) error {
	return e.record(ctx, ActionTempoMapUpdated, SeverityInfo, OutcomeSuccess,
		ResourceTempoMap, newMap.ID.String(), CategoryCatalogue,
		"slug", newMap.Slug,
		"app_id", newMap.AppID,
		"previous_segments", len(oldMap.Segments),
		"segments", len(newMap.Segments),
	)
}

// OnTempoMapDeleted implements plugin.OnTempoMapDeleted.
// Deletions are recorded as warnings.
func (e *Extension) OnTempoMapDeleted(ctx context.Context, mapID id.TempoMapID) error {
	return e.record(ctx, ActionTempoMapDeleted, SeverityWarning, OutcomeSuccess,
		ResourceTempoMap, mapID.String(), CategoryCatalogue,
	)
}

// OnTempoMapResolved implements plugin.OnTempoMapResolved.
func (e *Extension) OnTempoMapResolved(ctx context.Context, mapID id.TempoMapID, cacheHit bool, elapsed time.Duration) error {
	return e.record(ctx, ActionTempoMapResolved, SeverityInfo, OutcomeSuccess,
		ResourceTempoMap, mapID.String(), CategoryAccess,
		"cache_hit", cacheHit,
		"elapsed_us", elapsed.Microseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func (e *Extension) isEnabled(action string) bool {
	if e.enabled == nil {
		return action != ActionTempoMapResolved
	}
	return e.enabled[action]
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	kvPairs ...any,
) error {
	if !e.isEnabled(action) {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		ID:         id.NewAuditEventID(),
		Timestamp:  time.Now().UTC(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
