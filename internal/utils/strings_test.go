package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "EURUSD",
			expected: []string{"EURUSD"},
		},
		{
			name:     "varied spacing",
			input:    "EURUSD,  USDJPY , XAUUSD",
			expected: []string{"EURUSD", "USDJPY", "XAUUSD"},
		},
		{
			name:     "trailing comma",
			input:    "EURUSD,",
			expected: []string{"EURUSD"},
		},
		{
			name:     "only separators",
			input:    " , ,",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestParseSymbols(t *testing.T) {
	assert.Nil(t, ParseSymbols(""))
	assert.Equal(t, []string{"USDJPY", "EURUSD"}, ParseSymbols("usdjpy, EURUSD,UsdJpy"))
}
