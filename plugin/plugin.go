// Package plugin provides an extensible plugin system for Tempo.
// Plugins hook into engine lifecycle and tempo map events by implementing
// any subset of the hook interfaces below.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/tempomap"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *tempo.Engine.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Tempo map hooks
// ──────────────────────────────────────────────────

// OnTempoMapCreated is called after a tempo map is stored.
type OnTempoMapCreated interface {
	Plugin
	OnTempoMapCreated(ctx context.Context, m *tempomap.Map) error
}

// OnTempoMapUpdated is called after a tempo map is replaced.
type OnTempoMapUpdated interface {
	Plugin
	OnTempoMapUpdated(ctx context.Context, oldMap, newMap *tempomap.Map) error
}

// OnTempoMapDeleted is called after a tempo map is removed.
type OnTempoMapDeleted interface {
	Plugin
	OnTempoMapDeleted(ctx context.Context, mapID id.TempoMapID) error
}

// OnTempoMapResolved is called each time a conversion needs a compiled map.
// cacheHit reports whether the compiled form came from the engine cache.
type OnTempoMapResolved interface {
	Plugin
	OnTempoMapResolved(ctx context.Context, mapID id.TempoMapID, cacheHit bool, elapsed time.Duration) error
}
