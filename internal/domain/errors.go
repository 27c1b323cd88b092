package domain

import (
	"errors"
	"fmt"
)

// Terminal error kinds. Callers match them with errors.Is.
var (
	ErrConnection          = errors.New("terminal initialization failed")
	ErrAuthentication      = errors.New("terminal login failed")
	ErrUnknownSymbol       = errors.New("symbol not found in terminal catalog")
	ErrSymbolActivation    = errors.New("symbol could not be enabled")
	ErrUnknownTimeframe    = errors.New("unknown timeframe code")
	ErrUnknownOrderType    = errors.New("unknown order type")
	ErrNotPendingOrderType = errors.New("order type is not a pending order type")
	ErrNoData              = errors.New("terminal returned no data")
	ErrOrderRejected       = errors.New("order rejected by terminal")
	ErrSessionClosed       = errors.New("terminal session is closed")
)

// FatalError is returned when a session cannot be established.
// Kind is ErrConnection or ErrAuthentication.
type FatalError struct {
	Kind    error
	Code    int
	Message string
}

func (e *FatalError) Error() string {
	if e.Code != 0 || e.Message != "" {
		return fmt.Sprintf("%v: code=%d %s", e.Kind, e.Code, e.Message)
	}
	return e.Kind.Error()
}

func (e *FatalError) Unwrap() error { return e.Kind }

// SymbolError reports which symbol stopped an enablement pass.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }

// RejectedError carries the terminal's answer to an order request that did not
// come back with RetcodeDone.
type RejectedError struct {
	Retcode     uint32
	Description string
	Request     TradeRequest
	Result      TradeResult
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v: retcode=%d (%s) comment=%q", ErrOrderRejected, e.Retcode, e.Description, e.Result.Comment)
}

func (e *RejectedError) Unwrap() error { return ErrOrderRejected }
