// Package market holds the market data queries shared by the CLI and the API.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/mt5-trader/internal/domain"
)

// Query defaults
const (
	DefaultTimeframe = domain.H4
	DefaultCount     = 100
	MaxCount         = 100000
)

// Default tick range, in UTC.
var (
	DefaultTicksSymbol = "USDJPY"
	DefaultTicksFrom   = time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC)
	DefaultTicksTo     = time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC)
)

// DataSource is the part of the terminal session serving market data.
// *mt5.Session implements it.
type DataSource interface {
	Symbols(ctx context.Context) ([]domain.SymbolInfo, error)
	EnableSymbols(ctx context.Context, symbols []string) error
	Rates(ctx context.Context, symbol string, tf domain.Timeframe, offset, count int) ([]domain.Candle, error)
	TicksRange(ctx context.Context, symbol string, from, to time.Time, flag domain.TickFlag) ([]domain.Tick, error)
}

// RatesQuery selects bars counted back from the current one.
type RatesQuery struct {
	Symbol    string
	Timeframe domain.Timeframe
	Offset    int
	Count     int
}

// Validate checks the query bounds.
func (q RatesQuery) Validate() error {
	if q.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	if q.Count <= 0 || q.Count > MaxCount {
		return fmt.Errorf("count must be between 1 and %d", MaxCount)
	}
	return nil
}

// TicksQuery selects ticks inside a time range.
type TicksQuery struct {
	Symbol string
	From   time.Time
	To     time.Time
	Flag   domain.TickFlag
}

// Validate checks the query bounds.
func (q TicksQuery) Validate() error {
	if q.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if q.To.Before(q.From) {
		return fmt.Errorf("range end %s is before start %s", q.To.Format(time.RFC3339), q.From.Format(time.RFC3339))
	}
	return nil
}

// DefaultTicksQuery returns the stock tick range query.
func DefaultTicksQuery() TicksQuery {
	return TicksQuery{
		Symbol: DefaultTicksSymbol,
		From:   DefaultTicksFrom,
		To:     DefaultTicksTo,
		Flag:   domain.TicksAll,
	}
}

// FetchRates validates q and runs it against src.
func FetchRates(ctx context.Context, src DataSource, q RatesQuery) ([]domain.Candle, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return src.Rates(ctx, q.Symbol, q.Timeframe, q.Offset, q.Count)
}

// FetchTicks validates q and runs it against src.
func FetchTicks(ctx context.Context, src DataSource, q TicksQuery) ([]domain.Tick, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return src.TicksRange(ctx, q.Symbol, q.From, q.To, q.Flag)
}
