// Package sdk provides the msgpack-rpc client for the MetaTrader 5 terminal bridge.
package sdk

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"sync"
	"time"

	msgpackrpc "github.com/hashicorp/net-rpc-msgpackrpc"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ServiceName is the RPC service the bridge registers the terminal API under.
const ServiceName = "Terminal"

// Client talks to the terminal bridge. It is safe for concurrent use; the
// underlying net/rpc client multiplexes calls over one connection.
type Client struct {
	rpc         *rpc.Client
	callTimeout time.Duration
	log         zerolog.Logger
	closeOnce   sync.Once
	closeErr    error
}

// Dial connects to a bridge listening on addr.
// callTimeout bounds every call; zero means calls block until the bridge answers.
// A call abandoned on timeout or cancellation is not withdrawn: the bridge still
// runs it and its answer is dropped.
func Dial(addr string, dialTimeout, callTimeout time.Duration, log zerolog.Logger) (*Client, error) {
	log.Info().Str("addr", addr).Msg("Connecting to terminal bridge")

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to terminal bridge: %w", err)
	}

	c := NewClient(conn, callTimeout, log)
	log.Info().Str("addr", addr).Msg("Connected to terminal bridge")
	return c, nil
}

// NewClient wraps an established connection.
func NewClient(conn io.ReadWriteCloser, callTimeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		rpc:         rpc.NewClientWithCodec(msgpackrpc.NewClientCodec(conn)),
		callTimeout: callTimeout,
		log:         log.With().Str("component", "mt5-sdk").Logger(),
	}
}

// Close releases the connection. It does not shut the terminal down.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.rpc.Close()
	})
	return c.closeErr
}

// call invokes ServiceName.method and decodes the msgpack payload into out.
// out may be nil when the payload is ignored. An empty or nil payload leaves
// out untouched.
func (c *Client) call(ctx context.Context, method string, args interface{}, out interface{}) error {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	serviceMethod := ServiceName + "." + method
	var raw []byte
	pending := c.rpc.Go(serviceMethod, args, &raw, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		c.log.Warn().Str("method", serviceMethod).Err(ctx.Err()).Msg("Terminal call abandoned")
		return fmt.Errorf("%s: %w", serviceMethod, ctx.Err())
	case done := <-pending.Done:
		if done.Error != nil {
			c.log.Debug().
				Err(done.Error).
				Str("method", serviceMethod).
				Msg("RPC call failed")
			return fmt.Errorf("%s: %w", serviceMethod, done.Error)
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := msgpack.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", serviceMethod, err)
	}
	return nil
}

// Initialize attaches the bridge to the terminal and starts it if needed.
func (c *Client) Initialize(ctx context.Context, login int64, password, server, path string) (bool, error) {
	var ok bool
	err := c.call(ctx, "Initialize", InitializeArgs{
		Login:    login,
		Password: password,
		Server:   server,
		Path:     path,
	}, &ok)
	return ok, err
}

// Login authorises the trading account.
func (c *Client) Login(ctx context.Context, login int64, password, server string) (bool, error) {
	var ok bool
	err := c.call(ctx, "Login", LoginArgs{Login: login, Password: password, Server: server}, &ok)
	return ok, err
}

// LastError returns the terminal's last error code and description.
func (c *Client) LastError(ctx context.Context) (LastError, error) {
	var le LastError
	err := c.call(ctx, "LastError", Empty{}, &le)
	return le, err
}

// SymbolsGet returns the terminal's symbol catalog.
func (c *Client) SymbolsGet(ctx context.Context) ([]SymbolRecord, error) {
	var symbols []SymbolRecord
	err := c.call(ctx, "SymbolsGet", Empty{}, &symbols)
	return symbols, err
}

// SymbolSelect shows or hides a symbol in Market Watch.
func (c *Client) SymbolSelect(ctx context.Context, symbol string, enable bool) (bool, error) {
	var ok bool
	err := c.call(ctx, "SymbolSelect", SymbolSelectArgs{Symbol: symbol, Enable: enable}, &ok)
	return ok, err
}

// CopyRatesFromPos returns count bars starting start bars back from the current one.
func (c *Client) CopyRatesFromPos(ctx context.Context, symbol string, timeframe int32, start, count int) ([]RateRecord, error) {
	var rates []RateRecord
	err := c.call(ctx, "CopyRatesFromPos", CopyRatesArgs{
		Symbol:    symbol,
		Timeframe: timeframe,
		Start:     start,
		Count:     count,
	}, &rates)
	return rates, err
}

// CopyTicksRange returns the ticks between from and to inclusive.
func (c *Client) CopyTicksRange(ctx context.Context, symbol string, from, to time.Time, flags int32) ([]TickRecord, error) {
	var ticks []TickRecord
	err := c.call(ctx, "CopyTicksRange", CopyTicksArgs{
		Symbol: symbol,
		From:   from.UTC().Unix(),
		To:     to.UTC().Unix(),
		Flags:  flags,
	}, &ticks)
	return ticks, err
}

// OrderSend submits a trade request. A nil result means the terminal could
// not process the request at all. When ctx ends first the request may still
// reach the broker, so the caller cannot tell whether it was executed.
func (c *Client) OrderSend(ctx context.Context, req TradeRequest) (*TradeResult, error) {
	var result *TradeResult
	if err := c.call(ctx, "OrderSend", req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// OrdersGet returns the open orders.
func (c *Client) OrdersGet(ctx context.Context) ([]OrderRecord, error) {
	var orders []OrderRecord
	err := c.call(ctx, "OrdersGet", Empty{}, &orders)
	return orders, err
}

// PositionsGet returns the open positions.
func (c *Client) PositionsGet(ctx context.Context) ([]PositionRecord, error) {
	var positions []PositionRecord
	err := c.call(ctx, "PositionsGet", Empty{}, &positions)
	return positions, err
}

// Shutdown closes the terminal connection on the bridge side.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.call(ctx, "Shutdown", Empty{}, nil)
}
