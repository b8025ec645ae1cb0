package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migration represents a database migration
type Migration struct {
	Name  string
	Query string
	// Optional migrations only log a warning when they fail.
	Optional bool
}

// Migrations lists the schema steps of the version store, in order.
var Migrations = []Migration{
	{
		Name: "create_cv_blobs",
		Query: `
			CREATE TABLE IF NOT EXISTS cv_blobs (
				key TEXT PRIMARY KEY,
				value BYTEA NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Name: "add_cv_blobs_updated_at_index",
		Query: `
			CREATE INDEX IF NOT EXISTS cv_blobs_updated_at_idx ON cv_blobs (updated_at);
		`,
		Optional: true,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	return run(ctx, func(ctx context.Context, q string) error {
		_, err := pool.Exec(ctx, q)
		return err
	})
}

func run(ctx context.Context, exec func(context.Context, string) error) error {
	slog.Info("Starting database migrations")

	for _, m := range Migrations {
		if err := exec(ctx, m.Query); err != nil {
			if m.Optional {
				slog.Warn("Optional migration failed", "name", m.Name, "error", err)
				continue
			}
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}
