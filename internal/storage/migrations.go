package storage

import (
	"context"
	"fmt"
	"log/slog"
)

type migration struct {
	description string
	sql         string
	version     int
}

var migrations = []migration{
	{
		version:     1,
		description: "create moves table",
		sql: `
			CREATE TABLE IF NOT EXISTS moves (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				source_path TEXT NOT NULL,
				target_path TEXT NOT NULL,
				category TEXT NOT NULL,
				year TEXT NOT NULL,
				moved_at TIMESTAMP NOT NULL,
				verified BOOLEAN NOT NULL DEFAULT 1
			);
			CREATE INDEX IF NOT EXISTS idx_moves_category ON moves(category);
			CREATE INDEX IF NOT EXISTS idx_moves_moved_at ON moves(moved_at);`,
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteHistory) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		slog.Debug("applied migration", "version", m.version, "description", m.description)
	}

	return nil
}
