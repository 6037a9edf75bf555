package extension

import (
	"time"

	tempo "github.com/xraph/tempo"
	audithook "github.com/xraph/tempo/audit_hook"
	"github.com/xraph/tempo/observability"
	"github.com/xraph/tempo/plugin"
	"github.com/xraph/tempo/store"
)

// Option configures the Tempo Forge extension.
type Option func(*Extension)

// WithStore sets the store for the tempo engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a tempo.Option through to the underlying engine.
func WithEngineOption(opt tempo.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a tempo plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, tempo.WithPlugin(p))
	}
}

// WithMetrics registers the metrics plugin backed by factory.
func WithMetrics(factory observability.MetricFactory) Option {
	return WithPlugin(observability.NewMetricsExtension(factory))
}

// WithAuditRecorder registers the audit hook plugin writing to rec.
func WithAuditRecorder(rec audithook.Recorder, opts ...audithook.Option) Option {
	return WithPlugin(audithook.New(rec, opts...))
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithCacheTTL sets the compiled tempo map cache duration.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Extension) { e.config.CacheTTL = d }
}

// WithDisableCache turns the compiled tempo map cache off.
func WithDisableCache() Option {
	return func(e *Extension) { e.config.DisableCache = true }
}

// WithPluginTimeout bounds every plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.PluginTimeout = d }
}
