// Package converter turns staged batches into normalized row sets.
//
// Conversion is pure: the same payload always yields the same rows, including
// the ids of fanned-out child rows, so writing the result with keyed upserts
// is idempotent.
package converter

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/cuongbtq/warden-data/internal/domain"
)

// ConvertFunc normalizes the payload of one job kind
type ConvertFunc func(payload []byte, userID int64) (*domain.EntitySet, error)

// Converter dispatches payloads to the handler registered for their kind
type Converter struct {
	handlers map[domain.JobKind]ConvertFunc
}

// New returns a converter covering every job kind
func New() *Converter {
	return &Converter{
		handlers: map[domain.JobKind]ConvertFunc{
			domain.JobKindOrder:       convertOrders,
			domain.JobKindOrderEffect: convertOrderEffects,
			domain.JobKindSession:     convertSessions,
			domain.JobKindRuneHistory: convertRuneHistories,
		},
	}
}

// Convert normalizes payload for kind. Any malformed record, top-level or
// nested, fails the whole batch with domain.ErrInvalidPayload.
func (c *Converter) Convert(kind domain.JobKind, payload []byte, userID int64) (*domain.EntitySet, error) {
	handler, ok := c.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobKind, kind)
	}
	return handler(payload, userID)
}

func decodeBatch[T any](payload []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: decode batch: %v", domain.ErrInvalidPayload, err)
	}
	return items, nil
}

// dedupeByID keeps the last record for each id, in first-seen order. A bulk
// upsert cannot touch the same key twice in one statement.
func dedupeByID[T any](items []T, id func(T) int64) []T {
	index := make(map[int64]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := id(item)
		if i, seen := index[key]; seen {
			out[i] = item
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out
}

var childNamespace = uuid.MustParse("6f1c2a4e-5b0d-4c59-9a7e-3d2b8f41c0aa")

// childID derives a stable id for the ordinal-th child of parentID in table.
// Ids depend on position only, so re-sending a parent with fewer children
// leaves the rows at the higher ordinals in place.
func childID(table string, parentID int64, ordinal int) string {
	name := table + ":" + strconv.FormatInt(parentID, 10) + ":" + strconv.Itoa(ordinal)
	return uuid.NewSHA1(childNamespace, []byte(name)).String()
}

func convertOrders(payload []byte, userID int64) (*domain.EntitySet, error) {
	dtos, err := decodeBatch[domain.OrderDTO](payload)
	if err != nil {
		return nil, err
	}
	dtos = dedupeByID(dtos, func(d domain.OrderDTO) int64 { return d.ID })

	set := &domain.EntitySet{Orders: make([]domain.Order, 0, len(dtos))}
	for _, dto := range dtos {
		set.Orders = append(set.Orders, domain.Order{
			ID:     dto.ID,
			UserID: userID,
			Name:   dto.Name,
		})
	}
	return set, nil
}

func convertOrderEffects(payload []byte, _ int64) (*domain.EntitySet, error) {
	dtos, err := decodeBatch[domain.OrderEffectDTO](payload)
	if err != nil {
		return nil, err
	}
	dtos = dedupeByID(dtos, func(d domain.OrderEffectDTO) int64 { return d.ID })

	set := &domain.EntitySet{OrderEffects: make([]domain.OrderEffect, 0, len(dtos))}
	for _, dto := range dtos {
		set.OrderEffects = append(set.OrderEffects, domain.OrderEffect{
			ID:           dto.ID,
			OrderID:      dto.OrderID,
			EffectName:   dto.EffectName,
			MinValue:     dto.MinValue,
			MaxValue:     dto.MaxValue,
			DesiredValue: dto.DesiredValue,
		})
	}
	return set, nil
}

func convertSessions(payload []byte, userID int64) (*domain.EntitySet, error) {
	dtos, err := decodeBatch[domain.SessionDTO](payload)
	if err != nil {
		return nil, err
	}
	dtos = dedupeByID(dtos, func(d domain.SessionDTO) int64 { return d.ID })

	set := &domain.EntitySet{Sessions: make([]domain.Session, 0, len(dtos))}
	for _, dto := range dtos {
		set.Sessions = append(set.Sessions, domain.Session{
			ID:        dto.ID,
			UserID:    userID,
			OrderID:   dto.OrderID,
			Timestamp: dto.Timestamp,
		})

		var effects []domain.EffectData
		if err := dto.InitialEffects.Decode(&effects); err != nil {
			return nil, fmt.Errorf("session %d initial_effects: %w", dto.ID, err)
		}
		for i, effect := range effects {
			set.SessionEffects = append(set.SessionEffects, domain.SessionEffect{
				ID:           childID("session_effects", dto.ID, i),
				SessionID:    dto.ID,
				EffectName:   effect.EffectName,
				CurrentValue: effect.CurrentValue,
			})
		}

		var prices []domain.RunePriceData
		if err := dto.RunesPrices.Decode(&prices); err != nil {
			return nil, fmt.Errorf("session %d runes_prices: %w", dto.ID, err)
		}
		for i, price := range prices {
			set.SessionRunePrices = append(set.SessionRunePrices, domain.SessionRunePrice{
				ID:        childID("session_rune_prices", dto.ID, i),
				SessionID: dto.ID,
				RuneID:    price.ID,
				RuneName:  price.Name,
				Price:     price.Price,
			})
		}
	}
	return set, nil
}

func convertRuneHistories(payload []byte, userID int64) (*domain.EntitySet, error) {
	dtos, err := decodeBatch[domain.RuneHistoryDTO](payload)
	if err != nil {
		return nil, err
	}
	dtos = dedupeByID(dtos, func(d domain.RuneHistoryDTO) int64 { return d.ID })

	set := &domain.EntitySet{RuneHistories: make([]domain.RuneHistory, 0, len(dtos))}
	for _, dto := range dtos {
		set.RuneHistories = append(set.RuneHistories, domain.RuneHistory{
			ID:         dto.ID,
			UserID:     userID,
			SessionID:  dto.SessionID,
			RuneID:     dto.RuneID,
			IsTenta:    dto.IsTenta,
			HasSucceed: dto.HasSucceed,
			// Set later by the synchronizer, never by ingestion
			HasSynchronized: false,
		})

		var effects []domain.EffectData
		if err := dto.EffectsAfter.Decode(&effects); err != nil {
			return nil, fmt.Errorf("rune history %d effects_after: %w", dto.ID, err)
		}
		for i, effect := range effects {
			set.RuneHistoryEffects = append(set.RuneHistoryEffects, domain.RuneHistoryEffect{
				ID:            childID("rune_history_effects", dto.ID, i),
				RuneHistoryID: dto.ID,
				EffectName:    effect.EffectName,
				CurrentValue:  effect.CurrentValue,
			})
		}
	}
	return set, nil
}
