package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	_ "github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"

	tempo "github.com/xraph/tempo"
	"github.com/xraph/tempo/id"
	tempostore "github.com/xraph/tempo/store"
	"github.com/xraph/tempo/tempomap"
)

// compile-time interface check
var _ tempostore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tempo/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tempo/postgres: migration failed: %w", err)
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
	_, err := s.pg.NewInsert(toTempoMapModel(m)).Exec(ctx)
	if isUniqueViolation(err) {
		return tempo.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetTempoMap(ctx context.Context, mapID id.TempoMapID) (*tempomap.Map, error) {
	m := new(tempoMapModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", mapID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tempo.ErrTempoMapNotFound
		}
		return nil, err
	}
	return fromTempoMapModel(m)
}

func (s *Store) GetTempoMapBySlug(ctx context.Context, slug, appID string) (*tempomap.Map, error) {
	m := new(tempoMapModel)
	err := s.pg.NewSelect(m).
		Where("slug = ?", slug).
		Where("app_id = ?", appID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, tempo.ErrTempoMapNotFound
		}
		return nil, err
	}
	return fromTempoMapModel(m)
}

func (s *Store) ListTempoMaps(ctx context.Context, appID string, opts tempomap.ListOpts) ([]*tempomap.Map, error) {
	var models []tempoMapModel
	q := s.pg.NewSelect(&models).Where("app_id = ?", appID)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
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
	res, err := s.pg.NewUpdate(model).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return tempo.ErrAlreadyExists
		}
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tempo.ErrTempoMapNotFound
	}
	m.UpdatedAt = model.UpdatedAt
	return nil
}

func (s *Store) DeleteTempoMap(ctx context.Context, mapID id.TempoMapID) error {
	res, err := s.pg.NewDelete((*tempoMapModel)(nil)).
		Where("id = ?", mapID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tempo.ErrTempoMapNotFound
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err carries SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
