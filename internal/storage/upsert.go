package storage

import (
	"context"

	"github.com/cuongbtq/warden-data/internal/domain"
)

// The statements below are valid for both PostgreSQL and SQLite (>= 3.24).
// Header rows keep their owner: a conflicting row from another user is left
// unchanged.

const upsertOrdersQuery = `
	INSERT INTO orders (id, user_id, name)
	VALUES (:id, :user_id, :name)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name
	WHERE orders.user_id = excluded.user_id
`

const upsertOrderEffectsQuery = `
	INSERT INTO order_effects (id, order_id, effect_name, min_value, max_value, desired_value)
	VALUES (:id, :order_id, :effect_name, :min_value, :max_value, :desired_value)
	ON CONFLICT (id) DO UPDATE SET
		order_id = excluded.order_id,
		effect_name = excluded.effect_name,
		min_value = excluded.min_value,
		max_value = excluded.max_value,
		desired_value = excluded.desired_value
`

const upsertSessionsQuery = `
	INSERT INTO sessions (id, user_id, order_id, timestamp)
	VALUES (:id, :user_id, :order_id, :timestamp)
	ON CONFLICT (id) DO UPDATE SET
		order_id = excluded.order_id,
		timestamp = excluded.timestamp
	WHERE sessions.user_id = excluded.user_id
`

const upsertSessionEffectsQuery = `
	INSERT INTO session_effects (id, session_id, effect_name, current_value)
	VALUES (:id, :session_id, :effect_name, :current_value)
	ON CONFLICT (id) DO UPDATE SET
		session_id = excluded.session_id,
		effect_name = excluded.effect_name,
		current_value = excluded.current_value
`

const upsertSessionRunePricesQuery = `
	INSERT INTO session_rune_prices (id, session_id, rune_id, rune_name, price)
	VALUES (:id, :session_id, :rune_id, :rune_name, :price)
	ON CONFLICT (id) DO UPDATE SET
		session_id = excluded.session_id,
		rune_id = excluded.rune_id,
		rune_name = excluded.rune_name,
		price = excluded.price
`

// has_synchronized is owned by the synchronizer once the row exists
const upsertRuneHistoriesQuery = `
	INSERT INTO rune_histories (id, user_id, session_id, rune_id, is_tenta, has_succeed, has_synchronized)
	VALUES (:id, :user_id, :session_id, :rune_id, :is_tenta, :has_succeed, :has_synchronized)
	ON CONFLICT (id) DO UPDATE SET
		session_id = excluded.session_id,
		rune_id = excluded.rune_id,
		is_tenta = excluded.is_tenta,
		has_succeed = excluded.has_succeed
	WHERE rune_histories.user_id = excluded.user_id
`

const upsertRuneHistoryEffectsQuery = `
	INSERT INTO rune_history_effects (id, rune_history_id, effect_name, current_value)
	VALUES (:id, :rune_history_id, :effect_name, :current_value)
	ON CONFLICT (id) DO UPDATE SET
		rune_history_id = excluded.rune_history_id,
		effect_name = excluded.effect_name,
		current_value = excluded.current_value
`

// UpsertOrders inserts or updates orders by id
func (s *Storage) UpsertOrders(ctx context.Context, rows []domain.Order) error {
	return upsert(ctx, s, "orders", upsertOrdersQuery, rows)
}

// UpsertOrderEffects inserts or updates order effects by id
func (s *Storage) UpsertOrderEffects(ctx context.Context, rows []domain.OrderEffect) error {
	return upsert(ctx, s, "order_effects", upsertOrderEffectsQuery, rows)
}

// UpsertSessions inserts or updates session header rows by id
func (s *Storage) UpsertSessions(ctx context.Context, rows []domain.Session) error {
	return upsert(ctx, s, "sessions", upsertSessionsQuery, rows)
}

// UpsertSessionEffects inserts or updates session effects by id
func (s *Storage) UpsertSessionEffects(ctx context.Context, rows []domain.SessionEffect) error {
	return upsert(ctx, s, "session_effects", upsertSessionEffectsQuery, rows)
}

// UpsertSessionRunePrices inserts or updates session rune prices by id
func (s *Storage) UpsertSessionRunePrices(ctx context.Context, rows []domain.SessionRunePrice) error {
	return upsert(ctx, s, "session_rune_prices", upsertSessionRunePricesQuery, rows)
}

// UpsertRuneHistories inserts or updates rune history header rows by id
func (s *Storage) UpsertRuneHistories(ctx context.Context, rows []domain.RuneHistory) error {
	return upsert(ctx, s, "rune_histories", upsertRuneHistoriesQuery, rows)
}

// UpsertRuneHistoryEffects inserts or updates rune history effects by id
func (s *Storage) UpsertRuneHistoryEffects(ctx context.Context, rows []domain.RuneHistoryEffect) error {
	return upsert(ctx, s, "rune_history_effects", upsertRuneHistoryEffectsQuery, rows)
}
