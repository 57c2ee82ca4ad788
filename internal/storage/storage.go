package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// maxRowsPerStatement keeps batched upserts under the Postgres bind
// parameter limit (65535) for the widest table.
const maxRowsPerStatement = 1000

// Storage handles all durable store operations
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// upsert runs a named multi-row insert-or-update for rows in fixed-size chunks.
// Chunks are committed independently.
func upsert[T any](ctx context.Context, s *Storage, table, query string, rows []T) error {
	for start := 0; start < len(rows); start += maxRowsPerStatement {
		end := min(start+maxRowsPerStatement, len(rows))

		if _, err := s.db.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", table, err)
		}
	}

	if len(rows) > 0 {
		s.logger.Debug("Rows upserted",
			slog.String("table", table),
			slog.Int("rows", len(rows)),
		)
	}

	return nil
}
