package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Cross-batch references (order_id on sessions, session_id on rune
// histories) carry no foreign key because telemetry kinds arrive in any
// order. Fan-out children reference a parent written by the same job.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		token VARCHAR(255) NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS order_effects (
		id BIGINT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		effect_name TEXT NOT NULL,
		min_value BIGINT NOT NULL,
		max_value BIGINT NOT NULL,
		desired_value BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_order_effects_order_id ON order_effects (order_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		order_id BIGINT NOT NULL,
		timestamp BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_sessions_user_id ON sessions (user_id)`,
	`CREATE TABLE IF NOT EXISTS session_effects (
		id VARCHAR(36) PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
		effect_name TEXT NOT NULL,
		current_value BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_session_effects_session_id ON session_effects (session_id)`,
	`CREATE TABLE IF NOT EXISTS session_rune_prices (
		id VARCHAR(36) PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
		rune_id BIGINT NOT NULL,
		rune_name TEXT NOT NULL,
		price BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_session_rune_prices_session_id ON session_rune_prices (session_id)`,
	`CREATE TABLE IF NOT EXISTS rune_histories (
		id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		session_id BIGINT NOT NULL,
		rune_id BIGINT NOT NULL,
		is_tenta BOOLEAN NOT NULL,
		has_succeed BOOLEAN NOT NULL,
		has_synchronized BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS ix_rune_histories_user_id ON rune_histories (user_id)`,
	`CREATE TABLE IF NOT EXISTS rune_history_effects (
		id VARCHAR(36) PRIMARY KEY,
		rune_history_id BIGINT NOT NULL REFERENCES rune_histories (id) ON DELETE CASCADE,
		effect_name TEXT NOT NULL,
		current_value BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_rune_history_effects_rune_history_id ON rune_history_effects (rune_history_id)`,
}

// EnsureSchema creates the normalized tables if they do not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	s.logger.Info("Database schema ensured",
		slog.Int("statements", len(schemaStatements)),
	)
	return nil
}
