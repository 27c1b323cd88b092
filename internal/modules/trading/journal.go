package trading

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/mt5-trader/internal/domain"
)

// JournalEntry records one order lifecycle call and the terminal's answer.
type JournalEntry struct {
	ID             string    `json:"id"`
	Action         string    `json:"action"`
	Symbol         string    `json:"symbol,omitempty"`
	OrderType      string    `json:"order_type,omitempty"`
	Volume         float64   `json:"volume,omitempty"`
	Price          float64   `json:"price,omitempty"`
	SL             float64   `json:"sl,omitempty"`
	TP             float64   `json:"tp,omitempty"`
	OrderTicket    uint64    `json:"order_ticket,omitempty"`
	PositionTicket uint64    `json:"position_ticket,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	Retcode        uint32    `json:"retcode"`
	ResultOrder    uint64    `json:"result_order,omitempty"`
	ResultDeal     uint64    `json:"result_deal,omitempty"`
	ResultComment  string    `json:"result_comment,omitempty"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	OutcomeUnknown bool      `json:"outcome_unknown,omitempty"` // Abandoned by cancellation or timeout
	CreatedAt      time.Time `json:"created_at"`
}

// newJournalEntry fills the request side of an entry.
func newJournalEntry(req domain.TradeRequest) JournalEntry {
	entry := JournalEntry{
		Action:         req.Action.String(),
		Symbol:         req.Symbol,
		Volume:         req.Volume,
		Price:          req.Price,
		SL:             req.SL,
		TP:             req.TP,
		OrderTicket:    req.Order,
		PositionTicket: req.Position,
		Comment:        req.Comment,
	}
	if req.Action == domain.TradeActionPending {
		entry.OrderType = req.Type.String()
	}
	return entry
}

// withResult fills the answer side of an entry.
func (e JournalEntry) withResult(result domain.TradeResult) JournalEntry {
	e.Retcode = result.Retcode
	e.ResultOrder = result.Order
	e.ResultDeal = result.Deal
	e.ResultComment = result.Comment
	e.Success = result.Done()
	return e
}

// withFailure records a call that got no answer. A cancelled or timed-out call
// was abandoned by the client only; the bridge may still have sent it, so its
// outcome is unknown and the open orders must be checked.
func (e JournalEntry) withFailure(err error) JournalEntry {
	e.Error = err.Error()
	e.OutcomeUnknown = errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	return e
}
