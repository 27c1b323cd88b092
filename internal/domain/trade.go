package domain

import "fmt"

// TradeAction is the terminal's TRADE_ACTION_* value.
type TradeAction uint32

const (
	TradeActionDeal    TradeAction = 1
	TradeActionPending TradeAction = 5
	TradeActionSLTP    TradeAction = 6
	TradeActionModify  TradeAction = 7
	TradeActionRemove  TradeAction = 8
	TradeActionCloseBy TradeAction = 10
)

func (a TradeAction) String() string {
	switch a {
	case TradeActionDeal:
		return "DEAL"
	case TradeActionPending:
		return "PENDING"
	case TradeActionSLTP:
		return "SLTP"
	case TradeActionModify:
		return "MODIFY"
	case TradeActionRemove:
		return "REMOVE"
	case TradeActionCloseBy:
		return "CLOSE_BY"
	}
	return fmt.Sprintf("TradeAction(%d)", uint32(a))
}

// FillPolicy is the terminal's ORDER_FILLING_* value.
type FillPolicy int32

const (
	FillFOK    FillPolicy = 0
	FillIOC    FillPolicy = 1
	FillReturn FillPolicy = 2
)

// TimePolicy is the terminal's ORDER_TIME_* value.
type TimePolicy int32

const (
	TimeGTC          TimePolicy = 0
	TimeDay          TimePolicy = 1
	TimeSpecified    TimePolicy = 2
	TimeSpecifiedDay TimePolicy = 3
)

// TradeRequest mirrors the terminal's trade request structure.
type TradeRequest struct {
	Action      TradeAction `json:"action"`
	Magic       uint64      `json:"magic,omitempty"`
	Order       uint64      `json:"order,omitempty"`
	Symbol      string      `json:"symbol,omitempty"`
	Volume      float64     `json:"volume,omitempty"`
	Price       float64     `json:"price,omitempty"`
	StopLimit   float64     `json:"stoplimit,omitempty"`
	SL          float64     `json:"sl,omitempty"`
	TP          float64     `json:"tp,omitempty"`
	Deviation   uint64      `json:"deviation,omitempty"`
	Type        OrderType   `json:"type"`
	TypeFilling FillPolicy  `json:"type_filling"`
	TypeTime    TimePolicy  `json:"type_time"`
	Expiration  int64       `json:"expiration,omitempty"`
	Comment     string      `json:"comment,omitempty"`
	Position    uint64      `json:"position,omitempty"`
	PositionBy  uint64      `json:"position_by,omitempty"`
}

// TradeResult is the terminal's answer to a trade request.
type TradeResult struct {
	Retcode         uint32  `json:"retcode"`
	Deal            uint64  `json:"deal"`
	Order           uint64  `json:"order"`
	Volume          float64 `json:"volume"`
	Price           float64 `json:"price"`
	Bid             float64 `json:"bid"`
	Ask             float64 `json:"ask"`
	Comment         string  `json:"comment"`
	RequestID       uint32  `json:"request_id"`
	RetcodeExternal int32   `json:"retcode_external"`
}

// Done reports whether the terminal accepted the request.
func (r TradeResult) Done() bool {
	return r.Retcode == RetcodeDone
}

// PendingOrder holds the caller's inputs for placing a pending order.
type PendingOrder struct {
	Type       OrderType `json:"type"`
	Symbol     string    `json:"symbol"`
	Volume     float64   `json:"volume"`
	Price      float64   `json:"price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Comment    string    `json:"comment"`
}

// StopsUpdate holds new stop-loss and take-profit levels for an open position.
type StopsUpdate struct {
	Position   uint64  `json:"position"`
	Symbol     string  `json:"symbol"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

// PlaceResult is returned when a pending order was accepted.
type PlaceResult struct {
	Request TradeRequest `json:"request"`
	Result  TradeResult  `json:"result"`
}

// Ticket is the broker-assigned order ticket.
func (r *PlaceResult) Ticket() uint64 {
	return r.Result.Order
}

// CancelResult is the unnormalised answer to an order removal.
type CancelResult struct {
	Request TradeRequest `json:"request"`
	Result  TradeResult  `json:"result"`
}

// Succeeded reports whether the order was removed.
func (r *CancelResult) Succeeded() bool {
	return r.Result.Done()
}

// ModifyResult is the answer to a stop-loss/take-profit update.
type ModifyResult struct {
	Applied bool         `json:"applied"`
	Request TradeRequest `json:"request"`
	Result  TradeResult  `json:"result"`
}
