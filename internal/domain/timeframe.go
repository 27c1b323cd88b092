package domain

import (
	"fmt"
	"strings"
)

// Timeframe is a candle period supported by the terminal.
type Timeframe int

const (
	M1 Timeframe = iota
	M2
	M3
	M4
	M5
	M6
	M10
	M12
	M15
	M20
	M30
	H1
	H2
	H3
	H4
	H6
	H8
	H12
	D1
	W1
	MN1
	timeframeCount
)

// Terminal timeframe constants: minutes for intraday periods, flag bits for
// hours, weeks and months.
const (
	periodHours  = 0x4000
	periodWeeks  = 0x8000
	periodMonths = 0xC000
)

var timeframeTable = [timeframeCount]struct {
	code  string
	value int32
}{
	M1:  {"M1", 1},
	M2:  {"M2", 2},
	M3:  {"M3", 3},
	M4:  {"M4", 4},
	M5:  {"M5", 5},
	M6:  {"M6", 6},
	M10: {"M10", 10},
	M12: {"M12", 12},
	M15: {"M15", 15},
	M20: {"M20", 20},
	M30: {"M30", 30},
	H1:  {"H1", periodHours | 1},
	H2:  {"H2", periodHours | 2},
	H3:  {"H3", periodHours | 3},
	H4:  {"H4", periodHours | 4},
	H6:  {"H6", periodHours | 6},
	H8:  {"H8", periodHours | 8},
	H12: {"H12", periodHours | 12},
	D1:  {"D1", periodHours | 24},
	W1:  {"W1", periodWeeks | 1},
	MN1: {"MN1", periodMonths | 1},
}

// Timeframes returns every supported timeframe in ascending period order.
func Timeframes() []Timeframe {
	out := make([]Timeframe, 0, timeframeCount)
	for tf := M1; tf < timeframeCount; tf++ {
		out = append(out, tf)
	}
	return out
}

// ParseTimeframe maps a code such as "M1", "H4" or "MN1" to its Timeframe.
// Matching ignores case and surrounding spaces.
func ParseTimeframe(code string) (Timeframe, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for tf := M1; tf < timeframeCount; tf++ {
		if timeframeTable[tf].code == normalized {
			return tf, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, code)
}

// Valid reports whether tf is one of the defined timeframes.
func (tf Timeframe) Valid() bool {
	return tf >= M1 && tf < timeframeCount
}

// Value is the terminal constant sent over the wire.
func (tf Timeframe) Value() int32 {
	if !tf.Valid() {
		return 0
	}
	return timeframeTable[tf].value
}

func (tf Timeframe) String() string {
	if !tf.Valid() {
		return fmt.Sprintf("Timeframe(%d)", int(tf))
	}
	return timeframeTable[tf].code
}
