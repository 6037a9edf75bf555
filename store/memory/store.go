// Package memory is an in-process store. Rows are kept in their wire
// encoding so values read back go through the same lossy tempo round trip as
// the database backends.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/xraph/tempo"
	"github.com/xraph/tempo/id"
	"github.com/xraph/tempo/store"
	"github.com/xraph/tempo/tempomap"
	"github.com/xraph/tempo/wire"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool

	// Encoded tempo maps keyed by ID string.
	maps map[string][]byte
}

func New() *Store {
	return &Store{
		maps: make(map[string][]byte),
	}
}

func decode(row []byte) (*tempomap.Map, error) {
	m, err := wire.Unmarshal(row, tempomap.ReadMap)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	return m, nil
}

// findBySlug returns the ID of the map with slug in appID, or "".
// Callers hold s.mu.
func (s *Store) findBySlug(slug, appID string) (string, error) {
	for key, row := range s.maps {
		m, err := decode(row)
		if err != nil {
			return "", err
		}
		if m.Slug == slug && m.AppID == appID {
			return key, nil
		}
	}
	return "", nil
}

// Tempo map Store implementation
func (s *Store) CreateTempoMap(_ context.Context, m *tempomap.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tempo.ErrStoreClosed
	}
	if _, exists := s.maps[m.ID.String()]; exists {
		return tempo.ErrAlreadyExists
	}
	key, err := s.findBySlug(m.Slug, m.AppID)
	if err != nil {
		return err
	}
	if key != "" {
		return tempo.ErrAlreadyExists
	}

	s.maps[m.ID.String()] = wire.Marshal(m)
	return nil
}

func (s *Store) GetTempoMap(_ context.Context, mapID id.TempoMapID) (*tempomap.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tempo.ErrStoreClosed
	}
	row, ok := s.maps[mapID.String()]
	if !ok {
		return nil, tempo.ErrTempoMapNotFound
	}
	return decode(row)
}

func (s *Store) GetTempoMapBySlug(_ context.Context, slug, appID string) (*tempomap.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tempo.ErrStoreClosed
	}
	key, err := s.findBySlug(slug, appID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, tempo.ErrTempoMapNotFound
	}
	return decode(s.maps[key])
}

func (s *Store) ListTempoMaps(_ context.Context, appID string, opts tempomap.ListOpts) ([]*tempomap.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tempo.ErrStoreClosed
	}

	result := make([]*tempomap.Map, 0)
	for _, row := range s.maps {
		m, err := decode(row)
		if err != nil {
			return nil, err
		}
		if m.AppID == appID {
			result = append(result, m)
		}
	}
	slices.SortFunc(result, func(a, b *tempomap.Map) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	// Apply limit/offset
	// Negative values are ignored, as in the SQL stores.
	start := max(0, min(opts.Offset, len(result)))
	end := start + opts.Limit
	if opts.Limit <= 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) UpdateTempoMap(_ context.Context, m *tempomap.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tempo.ErrStoreClosed
	}
	if _, exists := s.maps[m.ID.String()]; !exists {
		return tempo.ErrTempoMapNotFound
	}
	key, err := s.findBySlug(m.Slug, m.AppID)
	if err != nil {
		return err
	}
	if key != "" && key != m.ID.String() {
		return tempo.ErrAlreadyExists
	}

	s.maps[m.ID.String()] = wire.Marshal(m)
	return nil
}

func (s *Store) DeleteTempoMap(_ context.Context, mapID id.TempoMapID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tempo.ErrStoreClosed
	}
	if _, exists := s.maps[mapID.String()]; !exists {
		return tempo.ErrTempoMapNotFound
	}
	delete(s.maps, mapID.String())
	return nil
}

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tempo.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
