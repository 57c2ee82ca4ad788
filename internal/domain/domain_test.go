package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobKind_Valid(t *testing.T) {
	for _, k := range JobKinds {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, JobKind("Invoice").Valid())
	assert.False(t, JobKind("").Valid())
}

func TestJobState_Terminal(t *testing.T) {
	assert.True(t, JobStateCommitted.Terminal())
	assert.True(t, JobStateDropped.Terminal())
	assert.False(t, JobStateEnqueued.Terminal())
	assert.False(t, JobStateDequeued.Terminal())
	assert.False(t, JobStateProcessing.Terminal())
}

func TestNestedJSON_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []EffectData
	}{
		{
			name:  "embedded text",
			input: `{"id":1,"order_id":2,"initial_effects":"[{\"effect_name\":\"Vi\",\"current_value\":10}]"}`,
			want:  []EffectData{{EffectName: "Vi", CurrentValue: 10}},
		},
		{
			name:  "inline array",
			input: `{"id":1,"order_id":2,"initial_effects":[{"effect_name":"Fo","current_value":3}]}`,
			want:  []EffectData{{EffectName: "Fo", CurrentValue: 3}},
		},
		{
			name:  "null",
			input: `{"id":1,"order_id":2,"initial_effects":null}`,
			want:  nil,
		},
		{
			name:  "missing",
			input: `{"id":1,"order_id":2}`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto SessionDTO
			require.NoError(t, json.Unmarshal([]byte(tt.input), &dto))

			var effects []EffectData
			require.NoError(t, dto.InitialEffects.Decode(&effects))
			assert.Equal(t, tt.want, effects)
		})
	}
}

func TestNestedJSON_MarshalsAsText(t *testing.T) {
	dto := SessionDTO{ID: 1, OrderID: 2, InitialEffects: NestedJSON(`[{"effect_name":"Vi","current_value":1}]`)}

	data, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"initial_effects":"[{\"effect_name\":\"Vi\",\"current_value\":1}]"`)

	var back SessionDTO
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, dto, back)
}

func TestNestedJSON_DecodeMalformed(t *testing.T) {
	var effects []EffectData
	err := NestedJSON(`[{"effect_name":`).Decode(&effects)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestProcessingError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewProcessingError(JobRecord{ID: "t-1", Kind: JobKindSession}, StageStore, cause)

	assert.ErrorIs(t, err, cause)

	var perr *ProcessingError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageStore, perr.Stage)
	assert.Equal(t, "job t-1 (Session) failed at store: connection reset", err.Error())
}

func TestEntitySet_RowCount(t *testing.T) {
	set := EntitySet{
		Sessions:          make([]Session, 2),
		SessionEffects:    make([]SessionEffect, 6),
		SessionRunePrices: make([]SessionRunePrice, 4),
	}
	assert.Equal(t, 12, set.RowCount())
}
