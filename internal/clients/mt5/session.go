// Package mt5 provides the trading session on top of the MetaTrader 5 terminal bridge.
package mt5

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/mt5-trader/internal/domain"
)

// pricePlaces is the precision price, stop loss and take profit are rounded to
// before a pending order is sent.
const pricePlaces = 3

// Session is an authenticated terminal connection. Terminal calls are
// serialised so one session can be shared by HTTP handlers and background jobs.
type Session struct {
	terminal Terminal
	login    int64
	server   string
	log      zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Open initializes the terminal and logs the account in.
//
// An initialize failure returns a *domain.FatalError of kind
// domain.ErrConnection carrying the terminal's last error. A login failure shuts
// the terminal connection down and returns one of kind domain.ErrAuthentication.
func Open(ctx context.Context, terminal Terminal, creds domain.Credentials, log zerolog.Logger) (*Session, error) {
	log = log.With().Str("client", "mt5").Int64("login", creds.Login).Logger()

	ok, err := terminal.Initialize(ctx, creds.Login, creds.Password, creds.Server, creds.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if !ok {
		fatal := &domain.FatalError{Kind: domain.ErrConnection}
		if le, lerr := terminal.LastError(ctx); lerr == nil {
			fatal.Code = le.Code
			fatal.Message = le.Message
		} else {
			log.Warn().Err(lerr).Msg("Failed to read terminal last error")
		}
		log.Error().Int("code", fatal.Code).Str("message", fatal.Message).Msg("initialize() failed")
		return nil, fatal
	}

	ok, err = terminal.Login(ctx, creds.Login, creds.Password, creds.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if !ok {
		fatal := &domain.FatalError{Kind: domain.ErrAuthentication}
		if le, lerr := terminal.LastError(ctx); lerr == nil {
			fatal.Code = le.Code
			fatal.Message = le.Message
		}
		if serr := terminal.Shutdown(ctx); serr != nil {
			log.Warn().Err(serr).Msg("Failed to shut terminal down after login failure")
		}
		log.Error().Str("server", creds.Server).Int("code", fatal.Code).Msg("login() failed")
		return nil, fatal
	}

	log.Info().Str("server", creds.Server).Msg("Logged in to trading account")

	return &Session{
		terminal: terminal,
		login:    creds.Login,
		server:   creds.Server,
		log:      log,
	}, nil
}

// Login returns the account number the session is logged in with.
func (s *Session) Login() int64 {
	return s.login
}

// Server returns the trade server name.
func (s *Session) Server() string {
	return s.server
}

// IsOpen reports whether Close has not been called yet.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Close shuts the terminal connection down. Calls after the first are no-ops.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.terminal.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut terminal down: %w", err)
	}
	s.log.Info().Msg("Terminal connection closed")
	return nil
}

// lock acquires the session for one operation.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	return nil
}

// Symbols returns the terminal's symbol catalog.
func (s *Session) Symbols(ctx context.Context) ([]domain.SymbolInfo, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	records, err := s.terminal.SymbolsGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbols: %w", err)
	}
	return transformSymbols(records), nil
}

// EnableSymbols adds each symbol to Market Watch, in order. It stops at the
// first symbol that is missing from the catalog or cannot be selected and
// returns a *domain.SymbolError; symbols enabled before it stay enabled.
func (s *Session) EnableSymbols(ctx context.Context, symbols []string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	records, err := s.terminal.SymbolsGet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get symbols: %w", err)
	}

	catalog := make(map[string]struct{}, len(records))
	for _, r := range records {
		catalog[r.Name] = struct{}{}
	}

	enabled := make([]string, 0, len(symbols))
	fail := func(symbol string, kind error) error {
		event := s.log.Error().Str("symbol", symbol).Err(kind)
		if len(enabled) > 0 {
			event = event.Strs("enabled", enabled)
		}
		event.Msg("Symbol enablement stopped")
		return &domain.SymbolError{Symbol: symbol, Err: kind}
	}

	for _, symbol := range symbols {
		if _, ok := catalog[symbol]; !ok {
			return fail(symbol, domain.ErrUnknownSymbol)
		}

		ok, err := s.terminal.SymbolSelect(ctx, symbol, true)
		if err != nil {
			return fmt.Errorf("failed to select %s: %w", symbol, err)
		}
		if !ok {
			return fail(symbol, domain.ErrSymbolActivation)
		}
		enabled = append(enabled, symbol)
	}

	s.log.Info().Strs("symbols", enabled).Msg("Symbols enabled")
	return nil
}

// Rates returns count bars of symbol on tf, starting offset bars back from the
// current bar. It returns domain.ErrNoData when the terminal has none.
func (s *Session) Rates(ctx context.Context, symbol string, tf domain.Timeframe, offset, count int) ([]domain.Candle, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTimeframe, tf)
	}

	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	records, err := s.terminal.CopyRatesFromPos(ctx, symbol, tf.Value(), offset, count)
	if err != nil {
		return nil, fmt.Errorf("failed to copy rates for %s: %w", symbol, err)
	}
	if len(records) == 0 {
		s.log.Warn().
			Str("symbol", symbol).
			Str("timeframe", tf.String()).
			Int("offset", offset).
			Int("count", count).
			Msg("No rates received")
		return nil, fmt.Errorf("%s %s: %w", symbol, tf, domain.ErrNoData)
	}

	return transformRates(records), nil
}

// TicksRange returns the ticks of symbol between from and to. Both instants are
// converted to UTC. An empty range is not an error.
func (s *Session) TicksRange(ctx context.Context, symbol string, from, to time.Time, flag domain.TickFlag) ([]domain.Tick, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	from, to = from.UTC(), to.UTC()
	records, err := s.terminal.CopyTicksRange(ctx, symbol, from, to, int32(flag))
	if err != nil {
		return nil, fmt.Errorf("failed to copy ticks for %s: %w", symbol, err)
	}
	if len(records) == 0 {
		s.log.Warn().
			Str("symbol", symbol).
			Time("from", from).
			Time("to", to).
			Msg("No ticks received")
	}

	return transformTicks(records), nil
}

// roundPrice rounds half away from zero to pricePlaces decimals.
func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(pricePlaces).InexactFloat64()
}

// PlaceOrder sends a pending order. Any retcode other than domain.RetcodeDone
// is returned as a *domain.RejectedError.
func (s *Session) PlaceOrder(ctx context.Context, order domain.PendingOrder) (*domain.PlaceResult, error) {
	if !order.Type.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOrderType, order.Type)
	}
	if !order.Type.IsPending() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotPendingOrderType, order.Type)
	}

	req := domain.TradeRequest{
		Action:      domain.TradeActionPending,
		Symbol:      order.Symbol,
		Volume:      order.Volume,
		Price:       roundPrice(order.Price),
		SL:          roundPrice(order.StopLoss),
		TP:          roundPrice(order.TakeProfit),
		Type:        order.Type,
		TypeFilling: domain.FillReturn,
		TypeTime:    domain.TimeGTC,
		Comment:     order.Comment,
	}

	result, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if !result.Done() {
		rejected := &domain.RejectedError{
			Retcode:     result.Retcode,
			Description: domain.RetcodeDescription(result.Retcode),
			Request:     req,
			Result:      result,
		}
		s.log.Error().
			Str("symbol", req.Symbol).
			Str("type", req.Type.String()).
			Uint32("retcode", result.Retcode).
			Str("comment", result.Comment).
			Msg("Order rejected")
		return nil, rejected
	}

	s.log.Info().
		Str("symbol", req.Symbol).
		Str("type", req.Type.String()).
		Float64("price", req.Price).
		Uint64("ticket", result.Order).
		Msg("Order placed")

	return &domain.PlaceResult{Request: req, Result: result}, nil
}

// CancelOrder removes a pending order. The terminal's answer is returned as is;
// only transport failures are errors.
func (s *Session) CancelOrder(ctx context.Context, ticket uint64) (*domain.CancelResult, error) {
	req := domain.TradeRequest{
		Action: domain.TradeActionRemove,
		Order:  ticket,
	}

	result, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint64("ticket", ticket).
		Uint32("retcode", result.Retcode).
		Msg("Order cancel sent")

	return &domain.CancelResult{Request: req, Result: result}, nil
}

// ModifyPosition changes the stop loss and take profit of an open position.
// Applied is true only for domain.RetcodeDone.
func (s *Session) ModifyPosition(ctx context.Context, update domain.StopsUpdate) (*domain.ModifyResult, error) {
	req := domain.TradeRequest{
		Action:   domain.TradeActionSLTP,
		Position: update.Position,
		Symbol:   update.Symbol,
		SL:       update.StopLoss,
		TP:       update.TakeProfit,
	}

	result, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}

	applied := result.Done()
	if !applied {
		s.log.Warn().
			Uint64("position", update.Position).
			Uint32("retcode", result.Retcode).
			Str("comment", result.Comment).
			Msg("Stops not applied")
	}

	return &domain.ModifyResult{Applied: applied, Request: req, Result: result}, nil
}

// send submits one trade request. It is never retried.
func (s *Session) send(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	if err := s.lock(); err != nil {
		return domain.TradeResult{}, err
	}
	defer s.mu.Unlock()

	result, err := s.terminal.OrderSend(ctx, toWireRequest(req))
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("failed to send %s request: %w", req.Action, err)
	}
	if result == nil {
		msg := "no details"
		if le, lerr := s.terminal.LastError(ctx); lerr == nil {
			msg = fmt.Sprintf("code=%d %s", le.Code, le.Message)
		}
		return domain.TradeResult{}, fmt.Errorf("terminal returned no result for %s request: %s", req.Action, msg)
	}

	return transformTradeResult(result), nil
}

// OpenOrderTickets returns the ticket of every open order.
func (s *Session) OpenOrderTickets(ctx context.Context) ([]uint64, error) {
	orders, err := s.OpenOrders(ctx)
	if err != nil {
		return nil, err
	}

	tickets := make([]uint64, 0, len(orders))
	for _, o := range orders {
		tickets = append(tickets, o.Ticket)
	}
	return tickets, nil
}

// OpenOrders returns the open pending orders.
func (s *Session) OpenOrders(ctx context.Context) ([]domain.Order, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	records, err := s.terminal.OrdersGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return transformOrders(records), nil
}

// OpenPositions returns the open positions.
func (s *Session) OpenPositions(ctx context.Context) ([]domain.Position, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	records, err := s.terminal.PositionsGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	return transformPositions(records), nil
}
