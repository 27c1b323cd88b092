package domain

import (
	"fmt"
	"strings"
	"time"
)

// Credentials identify the trading account and the terminal to drive.
type Credentials struct {
	Login    int64
	Password string
	Server   string
	Path     string // terminal executable
}

// SymbolInfo is the subset of the terminal's symbol record used here.
type SymbolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`
	Visible     bool   `json:"visible"`
	Select      bool   `json:"select"`
	Digits      int    `json:"digits"`
}

// Candle is one bar returned by a rates query.
type Candle struct {
	Time       time.Time `json:"time"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	TickVolume uint64    `json:"tick_volume"`
	Spread     int32     `json:"spread"`
	RealVolume uint64    `json:"real_volume"`
}

// Tick is one price change returned by a tick range query.
type Tick struct {
	Time       time.Time `json:"time"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	Last       float64   `json:"last"`
	Volume     uint64    `json:"volume"`
	TimeMsc    int64     `json:"time_msc"`
	Flags      uint32    `json:"flags"`
	VolumeReal float64   `json:"volume_real"`
}

// TickFlag selects which ticks a range query returns (COPY_TICKS_*).
type TickFlag int32

const (
	TicksAll   TickFlag = -1
	TicksInfo  TickFlag = 1
	TicksTrade TickFlag = 2
)

// ParseTickFlag accepts "all", "info" or "trade".
func ParseTickFlag(s string) (TickFlag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TicksAll, nil
	case "info":
		return TicksInfo, nil
	case "trade":
		return TicksTrade, nil
	}
	return 0, fmt.Errorf("unknown tick selection %q", s)
}

func (f TickFlag) String() string {
	switch f {
	case TicksAll:
		return "all"
	case TicksInfo:
		return "info"
	case TicksTrade:
		return "trade"
	}
	return fmt.Sprintf("TickFlag(%d)", int32(f))
}
