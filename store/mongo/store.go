package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	tempo "github.com/xraph/tempo"
	"github.com/xraph/tempo/id"
	tempostore "github.com/xraph/tempo/store"
	"github.com/xraph/tempo/tempomap"
)

// Collection name constants.
const (
	colTempoMaps = "tempo_maps"
)

// compile-time interface check
var _ tempostore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all tempo collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tempo/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Tempo map Store ====================

func (s *Store) CreateTempoMap(ctx context.Context, m *tempomap.Map) error {
	_, err := s.mdb.NewInsert(toTempoMapModel(m)).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tempo.ErrAlreadyExists
		}
		return fmt.Errorf("tempo/mongo: create tempo map: %w", err)
	}
	return nil
}

func (s *Store) GetTempoMap(ctx context.Context, mapID id.TempoMapID) (*tempomap.Map, error) {
	var m tempoMapModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": mapID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tempo.ErrTempoMapNotFound
		}
		return nil, fmt.Errorf("tempo/mongo: get tempo map: %w", err)
	}
	return fromTempoMapModel(&m)
}

func (s *Store) GetTempoMapBySlug(ctx context.Context, slug, appID string) (*tempomap.Map, error) {
	var m tempoMapModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"slug": slug, "app_id": appID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, tempo.ErrTempoMapNotFound
		}
		return nil, fmt.Errorf("tempo/mongo: get tempo map by slug: %w", err)
	}
	return fromTempoMapModel(&m)
}

func (s *Store) ListTempoMaps(ctx context.Context, appID string, opts tempomap.ListOpts) ([]*tempomap.Map, error) {
	var models []tempoMapModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"app_id": appID}).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tempo/mongo: list tempo maps: %w", err)
	}

	result := make([]*tempomap.Map, len(models))
	for i := range models {
		m, err := fromTempoMapModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = m
	}
	return result, nil
}

func (s *Store) UpdateTempoMap(ctx context.Context, m *tempomap.Map) error {
	model := toTempoMapModel(m)
	model.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(model).
		Filter(bson.M{"_id": model.ID}).
		Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tempo.ErrAlreadyExists
		}
		return fmt.Errorf("tempo/mongo: update tempo map: %w", err)
	}
	if res.MatchedCount() == 0 {
		return tempo.ErrTempoMapNotFound
	}
	m.UpdatedAt = model.UpdatedAt
	return nil
}

func (s *Store) DeleteTempoMap(ctx context.Context, mapID id.TempoMapID) error {
	res, err := s.mdb.NewDelete((*tempoMapModel)(nil)).
		Filter(bson.M{"_id": mapID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tempo/mongo: delete tempo map: %w", err)
	}
	if res.DeletedCount() == 0 {
		return tempo.ErrTempoMapNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tempo collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colTempoMaps: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}, {Key: "app_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "app_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
}
