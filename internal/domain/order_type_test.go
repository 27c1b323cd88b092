package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderType(t *testing.T) {
	testCases := []struct {
		name     string
		expected OrderType
		pending  bool
	}{
		{"BUY", OrderTypeBuy, false},
		{"SELL", OrderTypeSell, false},
		{"BUY_LIMIT", OrderTypeBuyLimit, true},
		{"SELL_LIMIT", OrderTypeSellLimit, true},
		{"BUY_STOP", OrderTypeBuyStop, true},
		{"sell_stop", OrderTypeSellStop, true},
		{"BUY_STOP_LIMIT", OrderTypeBuyStopLimit, true},
		{"SELL_STOP_LIMIT", OrderTypeSellStopLimit, true},
		{"CLOSE_BY", OrderTypeCloseBy, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ot, err := ParseOrderType(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ot)
			assert.Equal(t, tc.pending, ot.IsPending())
		})
	}
}

func TestParseOrderType_Unknown(t *testing.T) {
	_, err := ParseOrderType("BUY_TRAILING")
	assert.True(t, errors.Is(err, ErrUnknownOrderType))
	assert.Contains(t, err.Error(), "BUY_TRAILING")
}

func TestOrderType_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Type OrderType `json:"type"`
	}{OrderTypeSellStop})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SELL_STOP"}`, string(data))

	var decoded struct {
		Type OrderType `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"buy_limit"}`), &decoded))
	assert.Equal(t, OrderTypeBuyLimit, decoded.Type)

	err = json.Unmarshal([]byte(`{"type":"nope"}`), &decoded)
	assert.ErrorIs(t, err, ErrUnknownOrderType)
}
