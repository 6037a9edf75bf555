package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Tempo store (SQLite).
var Migrations = migrate.NewGroup("tempo")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_tempo_maps",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tempo_maps (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    slug       TEXT NOT NULL DEFAULT '',
    app_id     TEXT NOT NULL DEFAULT '',
    segments   BLOB NOT NULL,
    metadata   TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tempo_maps_app_id ON tempo_maps (app_id, created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tempo_maps_slug_app ON tempo_maps (slug, app_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tempo_maps`)
				return err
			},
		},
	)
}
