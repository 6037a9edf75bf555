package tempomap

import (
	"context"

	"github.com/xraph/tempo/id"
)

// Store persists tempo maps. Slugs are unique per app.
type Store interface {
	CreateTempoMap(ctx context.Context, m *Map) error
	GetTempoMap(ctx context.Context, mapID id.TempoMapID) (*Map, error)
	GetTempoMapBySlug(ctx context.Context, slug string, appID string) (*Map, error)
	ListTempoMaps(ctx context.Context, appID string, opts ListOpts) ([]*Map, error)
	UpdateTempoMap(ctx context.Context, m *Map) error
	DeleteTempoMap(ctx context.Context, mapID id.TempoMapID) error
}

// ListOpts pages through ListTempoMaps results, oldest first. A zero Limit
// returns everything after Offset.
type ListOpts struct {
	Limit  int
	Offset int
}
