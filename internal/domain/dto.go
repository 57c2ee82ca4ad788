package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NestedJSON holds a nested collection that producers send either as JSON
// text (a string containing an array) or as an inline JSON value. It is kept
// as text until the converter decodes it, and always serializes as a string.
type NestedJSON string

// UnmarshalJSON accepts a JSON string, an inline value, or null
func (n *NestedJSON) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*n = ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = NestedJSON(s)
	default:
		*n = NestedJSON(trimmed)
	}
	return nil
}

// Decode unmarshals the nested text into v. Empty text decodes to nothing.
func (n NestedJSON) Decode(v any) error {
	text := bytes.TrimSpace([]byte(n))
	if len(text) == 0 || bytes.Equal(text, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(text, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// OrderDTO is the producer record for kind Order
type OrderDTO struct {
	ID   int64  `json:"id" binding:"required"`
	Name string `json:"name" binding:"required,max=255"`
}

// OrderEffectDTO is the producer record for kind OrderEffect
type OrderEffectDTO struct {
	ID           int64  `json:"id" binding:"required"`
	OrderID      int64  `json:"order_id" binding:"required"`
	EffectName   string `json:"effect_name" binding:"required"`
	MinValue     int64  `json:"min_value"`
	MaxValue     int64  `json:"max_value"`
	DesiredValue int64  `json:"desired_value"`
}

// SessionDTO is the producer record for kind Session
type SessionDTO struct {
	ID             int64      `json:"id" binding:"required"`
	OrderID        int64      `json:"order_id" binding:"required"`
	Timestamp      int64      `json:"timestamp"`
	InitialEffects NestedJSON `json:"initial_effects"`
	RunesPrices    NestedJSON `json:"runes_prices"`
}

// RuneHistoryDTO is the producer record for kind RuneHistory
type RuneHistoryDTO struct {
	ID           int64      `json:"id" binding:"required"`
	SessionID    int64      `json:"session_id" binding:"required"`
	RuneID       int64      `json:"rune_id"`
	IsTenta      bool       `json:"is_tenta"`
	EffectsAfter NestedJSON `json:"effects_after"`
	HasSucceed   bool       `json:"has_succeed"`
}

// EffectData is one element of initial_effects / effects_after
type EffectData struct {
	EffectName   string `json:"effect_name"`
	CurrentValue int64  `json:"current_value"`
}

// RunePriceData is one element of runes_prices
type RunePriceData struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}
