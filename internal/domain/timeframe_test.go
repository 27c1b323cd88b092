package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe_AllCodes(t *testing.T) {
	testCases := []struct {
		code  string
		tf    Timeframe
		value int32
	}{
		{"M1", M1, 1},
		{"M2", M2, 2},
		{"M3", M3, 3},
		{"M4", M4, 4},
		{"M5", M5, 5},
		{"M6", M6, 6},
		{"M10", M10, 10},
		{"M12", M12, 12},
		{"M15", M15, 15},
		{"M20", M20, 20},
		{"M30", M30, 30},
		{"H1", H1, 16385},
		{"H2", H2, 16386},
		{"H3", H3, 16387},
		{"H4", H4, 16388},
		{"H6", H6, 16390},
		{"H8", H8, 16392},
		{"H12", H12, 16396},
		{"D1", D1, 16408},
		{"W1", W1, 32769},
		{"MN1", MN1, 49153},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			tf, err := ParseTimeframe(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.tf, tf)
			assert.Equal(t, tc.value, tf.Value())
			assert.Equal(t, tc.code, tf.String())
		})
	}
}

func TestParseTimeframe_DistinctConstants(t *testing.T) {
	seen := make(map[int32]Timeframe)
	for _, tf := range Timeframes() {
		prev, dup := seen[tf.Value()]
		assert.False(t, dup, "%s and %s share constant %d", tf, prev, tf.Value())
		seen[tf.Value()] = tf

		again, err := ParseTimeframe(tf.String())
		require.NoError(t, err)
		assert.Equal(t, tf, again)
	}
	assert.Len(t, seen, 21)
}

func TestParseTimeframe_IgnoresCaseAndSpaces(t *testing.T) {
	tf, err := ParseTimeframe(" h4 ")
	require.NoError(t, err)
	assert.Equal(t, H4, tf)
}

func TestParseTimeframe_Unknown(t *testing.T) {
	for _, code := range []string{"", "M7", "H5", "D2", "1H", "MN", "W2"} {
		t.Run(code, func(t *testing.T) {
			_, err := ParseTimeframe(code)
			assert.ErrorIs(t, err, ErrUnknownTimeframe)
		})
	}
}

func TestTimeframe_InvalidValue(t *testing.T) {
	tf := Timeframe(99)
	assert.False(t, tf.Valid())
	assert.Equal(t, int32(0), tf.Value())
	assert.Equal(t, "Timeframe(99)", tf.String())
}
