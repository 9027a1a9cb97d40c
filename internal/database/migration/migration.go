package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// DB is the subset of *sql.DB (and *sqlx.DB) used by migrations.
type DB interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_resources",
		SQL: `CREATE TABLE IF NOT EXISTS resources (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  kind        TEXT        NOT NULL,
  owner_id    TEXT        NOT NULL CHECK (owner_id <> ''),
  attributes  JSONB       NOT NULL DEFAULT '{}'::jsonb,
  images      JSONB       NOT NULL DEFAULT '[]'::jsonb,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_resources_kind_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_resources_kind_created_at ON resources (kind, created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_resources_kind_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_resources_kind_owner ON resources (kind, owner_id);`,
	},
	{
		Name: "create_index_resources_attributes",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_resources_attributes ON resources USING GIN (attributes);`,
	},
}

// EnsureMigrated checks if the 'resources' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.resources') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
