package domain

import (
	"fmt"
	"strings"
)

// OrderType is the terminal's ORDER_TYPE_* value.
type OrderType int32

const (
	OrderTypeBuy OrderType = iota
	OrderTypeSell
	OrderTypeBuyLimit
	OrderTypeSellLimit
	OrderTypeBuyStop
	OrderTypeSellStop
	OrderTypeBuyStopLimit
	OrderTypeSellStopLimit
	OrderTypeCloseBy
	orderTypeCount
)

var orderTypeNames = [orderTypeCount]string{
	OrderTypeBuy:           "BUY",
	OrderTypeSell:          "SELL",
	OrderTypeBuyLimit:      "BUY_LIMIT",
	OrderTypeSellLimit:     "SELL_LIMIT",
	OrderTypeBuyStop:       "BUY_STOP",
	OrderTypeSellStop:      "SELL_STOP",
	OrderTypeBuyStopLimit:  "BUY_STOP_LIMIT",
	OrderTypeSellStopLimit: "SELL_STOP_LIMIT",
	OrderTypeCloseBy:       "CLOSE_BY",
}

// ParseOrderType converts a case insensitive name like "BUY_STOP" into an
// OrderType.
func ParseOrderType(name string) (OrderType, error) {
	for t := OrderTypeBuy; t < orderTypeCount; t++ {
		if strings.EqualFold(strings.TrimSpace(name), orderTypeNames[t]) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %s not recognised as order type", ErrUnknownOrderType, name)
}

// Valid reports whether t is a defined order type.
func (t OrderType) Valid() bool {
	return t >= OrderTypeBuy && t < orderTypeCount
}

// IsPending reports whether the type rests in the book until triggered.
func (t OrderType) IsPending() bool {
	switch t {
	case OrderTypeBuyLimit, OrderTypeSellLimit,
		OrderTypeBuyStop, OrderTypeSellStop,
		OrderTypeBuyStopLimit, OrderTypeSellStopLimit:
		return true
	}
	return false
}

func (t OrderType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("OrderType(%d)", int32(t))
	}
	return orderTypeNames[t]
}

// MarshalText lets order types appear by name in JSON.
func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (t *OrderType) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
