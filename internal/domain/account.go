package domain

import "time"

// Order is an open (pending) order as reported by the terminal.
type Order struct {
	Ticket         uint64    `json:"ticket"`
	TimeSetup      time.Time `json:"time_setup"`
	Type           OrderType `json:"type"`
	Magic          uint64    `json:"magic"`
	VolumeInitial  float64   `json:"volume_initial"`
	VolumeCurrent  float64   `json:"volume_current"`
	PriceOpen      float64   `json:"price_open"`
	StopLoss       float64   `json:"sl"`
	TakeProfit     float64   `json:"tp"`
	PriceCurrent   float64   `json:"price_current"`
	PriceStopLimit float64   `json:"price_stoplimit"`
	Symbol         string    `json:"symbol"`
	Comment        string    `json:"comment"`
}

// PositionType is the terminal's POSITION_TYPE_* value.
type PositionType int32

const (
	PositionBuy  PositionType = 0
	PositionSell PositionType = 1
)

func (t PositionType) String() string {
	if t == PositionSell {
		return "SELL"
	}
	return "BUY"
}

// MarshalText lets position types appear by name in JSON.
func (t PositionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Position is an open position as reported by the terminal.
type Position struct {
	Ticket       uint64       `json:"ticket"`
	Time         time.Time    `json:"time"`
	Type         PositionType `json:"type"`
	Magic        uint64       `json:"magic"`
	Identifier   uint64       `json:"identifier"`
	Volume       float64      `json:"volume"`
	PriceOpen    float64      `json:"price_open"`
	StopLoss     float64      `json:"sl"`
	TakeProfit   float64      `json:"tp"`
	PriceCurrent float64      `json:"price_current"`
	Swap         float64      `json:"swap"`
	Profit       float64      `json:"profit"`
	Symbol       string       `json:"symbol"`
	Comment      string       `json:"comment"`
}
