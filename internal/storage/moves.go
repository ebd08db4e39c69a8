package storage

import (
	"context"
	"fmt"

	"github.com/mhartung/ablage/internal/model"
)

// RecordMove inserts a move into the audit log and fills in the record ID.
func (s *SQLiteHistory) RecordMove(ctx context.Context, record *model.MoveRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.SourcePath == "" || record.TargetPath == "" {
		return fmt.Errorf("record paths cannot be empty")
	}
	if record.Category == "" {
		return fmt.Errorf("record category cannot be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO moves (source_path, target_path, category, year, moved_at, verified)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.SourcePath, record.TargetPath, record.Category, record.Year,
		record.MovedAt, record.Verified)
	if err != nil {
		return fmt.Errorf("failed to insert move: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get move ID: %w", err)
	}
	record.ID = id
	return nil
}

// ListMoves returns the most recent moves, newest first.
func (s *SQLiteHistory) ListMoves(ctx context.Context, limit int) ([]model.MoveRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, target_path, category, year, moved_at, verified
		FROM moves
		ORDER BY moved_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var records []model.MoveRecord
	for rows.Next() {
		var rec model.MoveRecord
		if err := rows.Scan(&rec.ID, &rec.SourcePath, &rec.TargetPath,
			&rec.Category, &rec.Year, &rec.MovedAt, &rec.Verified); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moves: %w", err)
	}
	return records, nil
}
