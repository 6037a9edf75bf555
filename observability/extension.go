// Package observability provides a metrics extension for Tempo that records
// tempo map lifecycle counts and conversion latency via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/plugin"
	"github.com/xraph/tempo/tempomap"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnTempoMapCreated  = (*MetricsExtension)(nil)
	_ plugin.OnTempoMapUpdated  = (*MetricsExtension)(nil)
	_ plugin.OnTempoMapDeleted  = (*MetricsExtension)(nil)
	_ plugin.OnTempoMapResolved = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records tempo map metrics.
// Register it as a Tempo plugin to track them automatically.
type MetricsExtension struct {
	// Lifecycle metrics
	EngineStarted    Counter
	TempoMapCreated  Counter
	TempoMapUpdated  Counter
	TempoMapDeleted  Counter
	TempoMapSegments Histogram

	// Conversion metrics
	Resolutions    Counter
	CacheHits      Counter
	CacheMisses    Counter
	ResolveLatency Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		EngineStarted:    factory.Counter("tempo.engine.started"),
		TempoMapCreated:  factory.Counter("tempo.map.created"),
		TempoMapUpdated:  factory.Counter("tempo.map.updated"),
		TempoMapDeleted:  factory.Counter("tempo.map.deleted"),
		TempoMapSegments: factory.Histogram("tempo.map.segments"),

		Resolutions:    factory.Counter("tempo.resolve.total"),
		CacheHits:      factory.Counter("tempo.resolve.cache.hits"),
		CacheMisses:    factory.Counter("tempo.resolve.cache.misses"),
		ResolveLatency: factory.Histogram("tempo.resolve.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	m.EngineStarted.Inc()
	return nil
}

// OnTempoMapCreated implements plugin.OnTempoMapCreated.
func (m *MetricsExtension) OnTempoMapCreated(_ context.Context, tm *tempomap.Map) error {
	m.TempoMapCreated.Inc()
	m.TempoMapSegments.Observe(float64(len(tm.Segments)))
	return nil
}

// OnTempoMapUpdated implements plugin.OnTempoMapUpdated.
func (m *MetricsExtension) OnTempoMapUpdated(_ context.Context, _, tm *tempomap.Map) error {
	m.TempoMapUpdated.Inc()
	m.TempoMapSegments.Observe(float64(len(tm.Segments)))
	return nil
}

// OnTempoMapDeleted implements plugin.OnTempoMapDeleted.
func (m *MetricsExtension) OnTempoMapDeleted(_ context.Context, _ id.TempoMapID) error {
	m.TempoMapDeleted.Inc()
	return nil
}

// OnTempoMapResolved implements plugin.OnTempoMapResolved.
func (m *MetricsExtension) OnTempoMapResolved(_ context.Context, _ id.TempoMapID, cacheHit bool, elapsed time.Duration) error {
	m.Resolutions.Inc()
	if cacheHit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
	m.ResolveLatency.Observe(float64(elapsed.Microseconds()) / 1000)
	return nil
}
