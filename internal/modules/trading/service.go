// Package trading places, cancels and modifies orders and keeps the order journal.
package trading

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/domain"
)

// OrderGateway is the part of the terminal session the service trades through.
// *mt5.Session implements it.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, order domain.PendingOrder) (*domain.PlaceResult, error)
	CancelOrder(ctx context.Context, ticket uint64) (*domain.CancelResult, error)
	ModifyPosition(ctx context.Context, update domain.StopsUpdate) (*domain.ModifyResult, error)
}

// JournalRepositoryInterface defines the interface for journal persistence
type JournalRepositoryInterface interface {
	Create(entry JournalEntry) (JournalEntry, error)
	GetHistory(limit int) ([]JournalEntry, error)
	GetBySymbol(symbol string, limit int) ([]JournalEntry, error)
}

// Compile-time check that JournalRepository implements JournalRepositoryInterface
var _ JournalRepositoryInterface = (*JournalRepository)(nil)

// TradingService sends order requests and journals every attempt.
// Journal failures are logged; they never change the trading outcome.
type TradingService struct {
	gateway OrderGateway
	journal JournalRepositoryInterface
	log     zerolog.Logger
}

// NewTradingService creates a new trading service
func NewTradingService(gateway OrderGateway, journal JournalRepositoryInterface, log zerolog.Logger) *TradingService {
	return &TradingService{
		gateway: gateway,
		journal: journal,
		log:     log.With().Str("service", "trading").Logger(),
	}
}

// PlaceOrder places a pending order.
func (s *TradingService) PlaceOrder(ctx context.Context, order domain.PendingOrder) (*domain.PlaceResult, error) {
	result, err := s.gateway.PlaceOrder(ctx, order)

	var entry JournalEntry
	var rejected *domain.RejectedError
	switch {
	case err == nil:
		entry = newJournalEntry(result.Request).withResult(result.Result)
	case errors.As(err, &rejected):
		entry = newJournalEntry(rejected.Request).withResult(rejected.Result)
		entry.Error = err.Error()
	case errors.Is(err, domain.ErrNotPendingOrderType), errors.Is(err, domain.ErrUnknownOrderType):
		// Refused before reaching the terminal
		return nil, err
	default:
		entry = JournalEntry{
			Action:    domain.TradeActionPending.String(),
			Symbol:    order.Symbol,
			OrderType: order.Type.String(),
			Volume:    order.Volume,
			Price:     order.Price,
			SL:        order.StopLoss,
			TP:        order.TakeProfit,
			Comment:   order.Comment,
		}
		entry = entry.withFailure(err)
	}

	s.record(entry)
	return result, err
}

// CancelOrder removes a pending order.
func (s *TradingService) CancelOrder(ctx context.Context, ticket uint64) (*domain.CancelResult, error) {
	result, err := s.gateway.CancelOrder(ctx, ticket)

	if err != nil {
		s.record(JournalEntry{
			Action:      domain.TradeActionRemove.String(),
			OrderTicket: ticket,
		}.withFailure(err))
		return nil, err
	}

	s.record(newJournalEntry(result.Request).withResult(result.Result))
	return result, nil
}

// ModifyPosition changes the stops of an open position.
func (s *TradingService) ModifyPosition(ctx context.Context, update domain.StopsUpdate) (*domain.ModifyResult, error) {
	result, err := s.gateway.ModifyPosition(ctx, update)

	if err != nil {
		s.record(JournalEntry{
			Action:         domain.TradeActionSLTP.String(),
			Symbol:         update.Symbol,
			SL:             update.StopLoss,
			TP:             update.TakeProfit,
			PositionTicket: update.Position,
		}.withFailure(err))
		return nil, err
	}

	s.record(newJournalEntry(result.Request).withResult(result.Result))
	return result, nil
}

// History returns the most recent journal entries, newest first.
// A non-empty symbol restricts the list to that symbol.
func (s *TradingService) History(symbol string, limit int) ([]JournalEntry, error) {
	if symbol != "" {
		return s.journal.GetBySymbol(symbol, limit)
	}
	return s.journal.GetHistory(limit)
}

func (s *TradingService) record(entry JournalEntry) {
	if _, err := s.journal.Create(entry); err != nil {
		s.log.Error().
			Err(err).
			Str("action", entry.Action).
			Str("symbol", entry.Symbol).
			Msg("Failed to journal order request")
	}
}
