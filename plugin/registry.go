package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/tempomap"
)

// DefaultTimeout bounds every plugin call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and dispatches hooks to the ones
// implementing them. Hook lists are cached per interface at registration.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onTempoMapCreated  []OnTempoMapCreated
	onTempoMapUpdated  []OnTempoMapUpdated
	onTempoMapDeleted  []OnTempoMapDeleted
	onTempoMapResolved []OnTempoMapResolved
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-call plugin timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its hooks.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	var hooks []string
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		hooks = append(hooks, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		hooks = append(hooks, "OnShutdown")
	}
	if v, ok := p.(OnTempoMapCreated); ok {
		r.onTempoMapCreated = append(r.onTempoMapCreated, v)
		hooks = append(hooks, "OnTempoMapCreated")
	}
	if v, ok := p.(OnTempoMapUpdated); ok {
		r.onTempoMapUpdated = append(r.onTempoMapUpdated, v)
		hooks = append(hooks, "OnTempoMapUpdated")
	}
	if v, ok := p.(OnTempoMapDeleted); ok {
		r.onTempoMapDeleted = append(r.onTempoMapDeleted, v)
		hooks = append(hooks, "OnTempoMapDeleted")
	}
	if v, ok := p.(OnTempoMapResolved); ok {
		r.onTempoMapResolved = append(r.onTempoMapResolved, v)
		hooks = append(hooks, "OnTempoMapResolved")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", hooks,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit calls fn for every plugin in the snapshot selected by pick. Failures
// are logged and never returned.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, pick func(*Registry) []T, fn func(T) error) {
	r.mu.RLock()
	plugins := pick(r)
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return fn(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(ctx, r, "OnInit", func(r *Registry) []OnInit { return r.onInit }, func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", func(r *Registry) []OnShutdown { return r.onShutdown }, func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitTempoMapCreated emits a tempo map created event.
func (r *Registry) EmitTempoMapCreated(ctx context.Context, m *tempomap.Map) {
	emit(ctx, r, "OnTempoMapCreated", func(r *Registry) []OnTempoMapCreated { return r.onTempoMapCreated }, func(p OnTempoMapCreated) error {
		return p.OnTempoMapCreated(ctx, m)
	})
}

// EmitTempoMapUpdated emits a tempo map updated event.
func (r *Registry) EmitTempoMapUpdated(ctx context.Context, oldMap, newMap *tempomap.Map) {
	emit(ctx, r, "OnTempoMapUpdated", func(r *Registry) []OnTempoMapUpdated { return r.onTempoMapUpdated }, func(p OnTempoMapUpdated) error {
		return p.OnTempoMapUpdated(ctx, oldMap, newMap)
	})
}

// EmitTempoMapDeleted emits a tempo map deleted event.
func (r *Registry) EmitTempoMapDeleted(ctx context.Context, mapID id.TempoMapID) {
	emit(ctx, r, "OnTempoMapDeleted", func(r *Registry) []OnTempoMapDeleted { return r.onTempoMapDeleted }, func(p OnTempoMapDeleted) error {
		return p.OnTempoMapDeleted(ctx, mapID)
	})
}

// EmitTempoMapResolved emits a tempo map resolved event.
func (r *Registry) EmitTempoMapResolved(ctx context.Context, mapID id.TempoMapID, cacheHit bool, elapsed time.Duration) {
	emit(ctx, r, "OnTempoMapResolved", func(r *Registry) []OnTempoMapResolved { return r.onTempoMapResolved }, func(p OnTempoMapResolved) error {
		return p.OnTempoMapResolved(ctx, mapID, cacheHit, elapsed)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block conversions.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
