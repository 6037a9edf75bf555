// Package store defines the unified persistence interface implemented by the
// memory, sqlite, postgres and mongo backends.
package store

import (
	"context"

	"github.com/xraph/tempo/tempomap"
)

// Store is the unified storage interface for all Tempo records.
type Store interface {
	tempomap.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
