// Package extension provides the Forge extension adapter for Tempo.
//
// It implements the forge.Extension interface to integrate the tempo map
// engine into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.tempo" or "tempo" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	tempo "github.com/xraph/tempo"
	"github.com/xraph/tempo/store"
	"github.com/xraph/tempo/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "tempo"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Musical time conversions over stored tempo maps"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the tempo Engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *tempo.Engine
	store      store.Store
	engineOpts []tempo.Option
}

// New creates a new Tempo Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Engine.
// This is nil until Register is called.
func (e *Extension) Engine() *tempo.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		e.store = memory.New()
	}

	e.engine = tempo.New(e.store, e.buildEngineOpts()...)

	return vessel.Provide(fapp.Container(), func() (*tempo.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("tempo: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return tempo.ErrStoreNotReady
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs tempo.Option values from the resolved config.
// Pass-through options come last so they win.
func (e *Extension) buildEngineOpts() []tempo.Option {
	opts := make([]tempo.Option, 0, len(e.engineOpts)+3)

	if e.config.DisableMigrate {
		opts = append(opts, tempo.WithoutMigrate())
	}
	switch {
	case e.config.DisableCache:
		opts = append(opts, tempo.WithCacheTTL(0))
	case e.config.CacheTTL > 0:
		opts = append(opts, tempo.WithCacheTTL(e.config.CacheTTL))
	}
	if e.config.PluginTimeout > 0 {
		opts = append(opts, tempo.WithPluginTimeout(e.config.PluginTimeout))
	}

	return append(opts, e.engineOpts...)
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("tempo: configuration is required but not found in config files; " +
				"ensure 'extensions.tempo' or 'tempo' key exists in your config")
		}
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("tempo: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("disable_cache", e.config.DisableCache),
		forge.F("cache_ttl", e.config.CacheTTL),
		forge.F("plugin_timeout", e.config.PluginTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	// "extensions.tempo" first, then the bare "tempo" key.
	for _, key := range []string{"extensions.tempo", "tempo"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("tempo: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("tempo: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.PluginTimeout == 0 {
		cfg.PluginTimeout = defaults.PluginTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.DisableCache {
		yamlConfig.DisableCache = true
	}

	if yamlConfig.CacheTTL == 0 && programmaticConfig.CacheTTL != 0 {
		yamlConfig.CacheTTL = programmaticConfig.CacheTTL
	}
	if yamlConfig.PluginTimeout == 0 && programmaticConfig.PluginTimeout != 0 {
		yamlConfig.PluginTimeout = programmaticConfig.PluginTimeout
	}

	return e.mergeWithDefaults(yamlConfig)
}
