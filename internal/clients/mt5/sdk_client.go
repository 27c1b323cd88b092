package mt5

import (
	"context"
	"time"

	"github.com/aristath/mt5-trader/internal/clients/mt5/sdk"
)

// Terminal is the terminal API surface the session depends on.
// *sdk.Client implements it; tests substitute a mock.
type Terminal interface {
	Initialize(ctx context.Context, login int64, password, server, path string) (bool, error)
	Login(ctx context.Context, login int64, password, server string) (bool, error)
	LastError(ctx context.Context) (sdk.LastError, error)
	SymbolsGet(ctx context.Context) ([]sdk.SymbolRecord, error)
	SymbolSelect(ctx context.Context, symbol string, enable bool) (bool, error)
	CopyRatesFromPos(ctx context.Context, symbol string, timeframe int32, start, count int) ([]sdk.RateRecord, error)
	CopyTicksRange(ctx context.Context, symbol string, from, to time.Time, flags int32) ([]sdk.TickRecord, error)
	OrderSend(ctx context.Context, req sdk.TradeRequest) (*sdk.TradeResult, error)
	OrdersGet(ctx context.Context) ([]sdk.OrderRecord, error)
	PositionsGet(ctx context.Context) ([]sdk.PositionRecord, error)
	Shutdown(ctx context.Context) error
}

var _ Terminal = (*sdk.Client)(nil)
