package tempo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/plugin"
	"github.com/xraph/tempo/store"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/types"
)

// DefaultCacheTTL is how long a compiled tempo map is reused before it is
// loaded from the store again.
const DefaultCacheTTL = 30 * time.Second

// Engine stores tempo maps and converts between time and beats over them.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	cacheTTL    time.Duration
	skipMigrate bool

	mu       sync.RWMutex
	compiled map[string]cachedMap
	epoch    uint64 // bumped by invalidate
}

type cachedMap struct {
	compiled *tempomap.Compiled
	expires  time.Time
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		cacheTTL: DefaultCacheTTL,
		compiled: make(map[string]cachedMap),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.plugins.WithTimeout(d)
	}
}

// WithCacheTTL sets how long compiled maps are cached. Zero disables the
// cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithoutMigrate makes Start skip store migrations.
func WithoutMigrate() Option {
	return func(e *Engine) {
		e.skipMigrate = true
	}
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if !e.skipMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
		}
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("tempo started",
		"cache_ttl", e.cacheTTL,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Engine and closes its store.
func (e *Engine) Stop() error {
	e.plugins.EmitShutdown(context.Background())

	e.mu.Lock()
	clear(e.compiled)
	e.mu.Unlock()

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Tempo map management
// ──────────────────────────────────────────────────

// CreateTempoMap validates and stores a new tempo map. A nil ID is replaced
// with a fresh one and the timestamps are reset.
func (e *Engine) CreateTempoMap(ctx context.Context, m *tempomap.Map) error {
	if m.ID.IsNil() {
		m.ID = id.NewTempoMapID()
	}
	m.Entity = types.NewEntity()

	if err := validate(m); err != nil {
		return err
	}

	if err := e.store.CreateTempoMap(ctx, m); err != nil {
		return err
	}

	e.logger.Debug("tempo map created",
		"tempo_map_id", m.ID.String(),
		"slug", m.Slug,
		"segments", len(m.Segments),
	)

	e.plugins.EmitTempoMapCreated(ctx, m)
	return nil
}

// GetTempoMap retrieves a tempo map by ID.
func (e *Engine) GetTempoMap(ctx context.Context, mapID id.TempoMapID) (*tempomap.Map, error) {
	return e.store.GetTempoMap(ctx, mapID)
}

// GetTempoMapBySlug retrieves a tempo map by slug within an app.
func (e *Engine) GetTempoMapBySlug(ctx context.Context, slug, appID string) (*tempomap.Map, error) {
	return e.store.GetTempoMapBySlug(ctx, slug, appID)
}

// ListTempoMaps lists the tempo maps of an app, oldest first.
func (e *Engine) ListTempoMaps(ctx context.Context, appID string, opts tempomap.ListOpts) ([]*tempomap.Map, error) {
	return e.store.ListTempoMaps(ctx, appID, opts)
}

// UpdateTempoMap replaces a stored tempo map. CreatedAt is preserved from
// the stored copy.
func (e *Engine) UpdateTempoMap(ctx context.Context, m *tempomap.Map) error {
	if err := validate(m); err != nil {
		return err
	}

	old, err := e.store.GetTempoMap(ctx, m.ID)
	if err != nil {
		return err
	}

	m.CreatedAt = old.CreatedAt
	m.Touch()

	if err := e.store.UpdateTempoMap(ctx, m); err != nil {
		return err
	}
	e.invalidate(m.ID)

	e.plugins.EmitTempoMapUpdated(ctx, old, m)
	return nil
}

// DeleteTempoMap removes a tempo map.
func (e *Engine) DeleteTempoMap(ctx context.Context, mapID id.TempoMapID) error {
	if err := e.store.DeleteTempoMap(ctx, mapID); err != nil {
		return err
	}
	e.invalidate(mapID)

	e.plugins.EmitTempoMapDeleted(ctx, mapID)
	return nil
}

func validate(m *tempomap.Map) error {
	if m.ID.IsNil() || m.ID.Prefix() != id.PrefixTempoMap {
		return ValidationError{Field: "id", Message: "must be a tempo map id", Err: ErrInvalidInput}
	}
	if m.Slug == "" {
		return ValidationError{Field: "slug", Message: "must not be empty", Err: ErrInvalidInput}
	}
	if err := m.Validate(); err != nil {
		return ValidationError{Field: "segments", Message: err.Error(), Err: err}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Conversions
// ──────────────────────────────────────────────────

// BeatsAt returns the beat position of the stored map at time offset t.
func (e *Engine) BeatsAt(ctx context.Context, mapID id.TempoMapID, t time.Duration) (types.Beats, error) {
	c, err := e.resolve(ctx, mapID)
	if err != nil {
		return types.Beats{}, err
	}
	return c.BeatsAt(t), nil
}

// TimeAt returns the time offset at which the stored map reaches b.
func (e *Engine) TimeAt(ctx context.Context, mapID id.TempoMapID, b types.Beats) (time.Duration, error) {
	c, err := e.resolve(ctx, mapID)
	if err != nil {
		return 0, err
	}
	return c.TimeAt(b), nil
}

// TempoAt returns the tempo of the stored map at beat b.
func (e *Engine) TempoAt(ctx context.Context, mapID id.TempoMapID, b types.Beats) (types.Tempo, error) {
	c, err := e.resolve(ctx, mapID)
	if err != nil {
		return types.Tempo{}, err
	}
	return c.TempoAt(b), nil
}

// PhaseAt returns the phase of the beat position at time offset t within a
// cycle of length quantum.
func (e *Engine) PhaseAt(ctx context.Context, mapID id.TempoMapID, t time.Duration, quantum types.Beats) (types.Beats, error) {
	c, err := e.resolve(ctx, mapID)
	if err != nil {
		return types.Beats{}, err
	}
	return types.Phase(c.BeatsAt(t), quantum), nil
}

// Timelines returns the compiled timelines of the stored map.
func (e *Engine) Timelines(ctx context.Context, mapID id.TempoMapID) ([]types.Timeline, error) {
	c, err := e.resolve(ctx, mapID)
	if err != nil {
		return nil, err
	}
	return c.Timelines(), nil
}

// resolve returns the compiled form of a stored map, from cache when fresh.
func (e *Engine) resolve(ctx context.Context, mapID id.TempoMapID) (*tempomap.Compiled, error) {
	start := time.Now()
	key := mapID.String()

	e.mu.RLock()
	entry, ok := e.compiled[key]
	epoch := e.epoch
	e.mu.RUnlock()

	if ok && time.Now().Before(entry.expires) {
		e.plugins.EmitTempoMapResolved(ctx, mapID, true, time.Since(start))
		return entry.compiled, nil
	}

	m, err := e.store.GetTempoMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	c, err := m.Compile()
	if err != nil {
		return nil, fmt.Errorf("tempo: compile %s: %w", key, err)
	}

	// A write that invalidated while we were loading may have made c stale;
	// it is still returned but not cached.
	if e.cacheTTL > 0 {
		e.mu.Lock()
		if e.epoch == epoch {
			e.compiled[key] = cachedMap{compiled: c, expires: time.Now().Add(e.cacheTTL)}
		}
		e.mu.Unlock()
	}

	e.plugins.EmitTempoMapResolved(ctx, mapID, false, time.Since(start))
	return c, nil
}

func (e *Engine) invalidate(mapID id.TempoMapID) {
	e.mu.Lock()
	delete(e.compiled, mapID.String())
	e.epoch++
	e.mu.Unlock()
}
