package testing

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/mt5-trader/internal/clients/mt5/sdk"
)

// MockTerminal is an in-memory terminal for tests. It implements mt5.Terminal.
// Zero value: initialize and login succeed, the catalog is empty and every
// query returns nothing.
type MockTerminal struct {
	mu sync.Mutex

	InitializeFails bool
	LoginFails      bool
	LastErr         sdk.LastError

	Catalog      []sdk.SymbolRecord
	RejectSelect map[string]bool
	Rates        []sdk.RateRecord
	Ticks        []sdk.TickRecord
	Orders       []sdk.OrderRecord
	Positions    []sdk.PositionRecord

	// TradeResult answers every OrderSend; nil means the terminal returned
	// no result.
	TradeResult *sdk.TradeResult

	// Err, when set, is returned by every call as a transport failure.
	Err error

	// Recorded calls
	Selected      []string
	SentRequests  []sdk.TradeRequest
	RatesCalls    []sdk.CopyRatesArgs
	TicksCalls    []sdk.CopyTicksArgs
	ShutdownCalls int
	LastErrCalls  int
}

// NewMockTerminal returns a terminal whose catalog holds symbols.
func NewMockTerminal(symbols ...string) *MockTerminal {
	m := &MockTerminal{RejectSelect: make(map[string]bool)}
	for _, s := range symbols {
		m.Catalog = append(m.Catalog, sdk.SymbolRecord{Name: s, Visible: true})
	}
	return m
}

// SetTradeResult sets the retcode returned by OrderSend.
func (m *MockTerminal) SetTradeResult(retcode uint32, order uint64, comment string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TradeResult = &sdk.TradeResult{Retcode: retcode, Order: order, Comment: comment}
}

// SetError makes every subsequent call fail with err.
func (m *MockTerminal) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// LastRequest returns the most recent OrderSend argument.
func (m *MockTerminal) LastRequest() (sdk.TradeRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentRequests) == 0 {
		return sdk.TradeRequest{}, false
	}
	return m.SentRequests[len(m.SentRequests)-1], true
}

func (m *MockTerminal) Initialize(_ context.Context, _ int64, _, _, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return !m.InitializeFails, nil
}

func (m *MockTerminal) Login(_ context.Context, _ int64, _, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return !m.LoginFails, nil
}

func (m *MockTerminal) LastError(_ context.Context) (sdk.LastError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastErrCalls++
	return m.LastErr, nil
}

func (m *MockTerminal) SymbolsGet(_ context.Context) ([]sdk.SymbolRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Catalog, nil
}

func (m *MockTerminal) SymbolSelect(_ context.Context, symbol string, _ bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	m.Selected = append(m.Selected, symbol)
	return !m.RejectSelect[symbol], nil
}

func (m *MockTerminal) CopyRatesFromPos(_ context.Context, symbol string, timeframe int32, start, count int) ([]sdk.RateRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatesCalls = append(m.RatesCalls, sdk.CopyRatesArgs{Symbol: symbol, Timeframe: timeframe, Start: start, Count: count})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rates, nil
}

func (m *MockTerminal) CopyTicksRange(_ context.Context, symbol string, from, to time.Time, flags int32) ([]sdk.TickRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TicksCalls = append(m.TicksCalls, sdk.CopyTicksArgs{Symbol: symbol, From: from.Unix(), To: to.Unix(), Flags: flags})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Ticks, nil
}

func (m *MockTerminal) OrderSend(_ context.Context, req sdk.TradeRequest) (*sdk.TradeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentRequests = append(m.SentRequests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.TradeResult == nil {
		return nil, nil
	}
	result := *m.TradeResult
	return &result, nil
}

func (m *MockTerminal) OrdersGet(_ context.Context) ([]sdk.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Orders, nil
}

func (m *MockTerminal) PositionsGet(_ context.Context) ([]sdk.PositionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Positions, nil
}

func (m *MockTerminal) Shutdown(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShutdownCalls++
	return nil
}
