package trading

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/mt5-trader/internal/clients/mt5"
	"github.com/aristath/mt5-trader/internal/domain"
	testingpkg "github.com/aristath/mt5-trader/internal/testing"
)

// failingJournal fails every write.
type failingJournal struct {
	JournalRepositoryInterface
}

func (failingJournal) Create(JournalEntry) (JournalEntry, error) {
	return JournalEntry{}, errors.New("disk full")
}

func setupService(t *testing.T) (*TradingService, *testingpkg.MockTerminal, *JournalRepository) {
	t.Helper()

	terminal := testingpkg.NewMockTerminal("USDJPY", "EURUSD")
	session, err := mt5.Open(context.Background(), terminal, domain.Credentials{Login: 1, Server: "Demo"}, zerolog.Nop())
	require.NoError(t, err)

	journal := newTestJournal(t)
	return NewTradingService(session, journal, zerolog.Nop()), terminal, journal
}

func buyStop() domain.PendingOrder {
	return domain.PendingOrder{
		Type:       domain.OrderTypeBuyStop,
		Symbol:     "USDJPY",
		Volume:     1.0,
		Price:      150.123456,
		StopLoss:   149.0,
		TakeProfit: 151.0,
		Comment:    "test",
	}
}

func TestTradingService_PlaceOrderJournalsSuccess(t *testing.T) {
	service, terminal, journal := setupService(t)
	terminal.SetTradeResult(domain.RetcodeDone, 50001, "Request executed")

	result, err := service.PlaceOrder(context.Background(), buyStop())
	require.NoError(t, err)
	assert.Equal(t, uint64(50001), result.Ticket())

	history, err := journal.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "PENDING", history[0].Action)
	assert.Equal(t, "BUY_STOP", history[0].OrderType)
	assert.Equal(t, 150.123, history[0].Price)
	assert.True(t, history[0].Success)
	assert.Empty(t, history[0].Error)
}

func TestTradingService_PlaceOrderJournalsRejection(t *testing.T) {
	service, terminal, journal := setupService(t)
	terminal.SetTradeResult(domain.RetcodeMarketClosed, 0, "Market closed")

	_, err := service.PlaceOrder(context.Background(), buyStop())
	assert.ErrorIs(t, err, domain.ErrOrderRejected)

	history, err := journal.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
	assert.Equal(t, domain.RetcodeMarketClosed, history[0].Retcode)
	assert.Contains(t, history[0].Error, "retcode=10018")
}

func TestTradingService_PlaceOrderRefusedTypeNotJournaled(t *testing.T) {
	service, _, journal := setupService(t)

	order := buyStop()
	order.Type = domain.OrderTypeSell
	_, err := service.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, domain.ErrNotPendingOrderType)

	history, err := journal.GetHistory(10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTradingService_TransportFailureJournaled(t *testing.T) {
	service, terminal, journal := setupService(t)
	terminal.SetError(errors.New("bridge went away"))

	_, err := service.PlaceOrder(context.Background(), buyStop())
	require.Error(t, err)

	_, err = service.CancelOrder(context.Background(), 50001)
	require.Error(t, err)

	history, err := journal.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, e := range history {
		assert.Contains(t, e.Error, "bridge went away")
		assert.False(t, e.Success)
	}
}

func TestTradingService_AbandonedCallOutcomeUnknown(t *testing.T) {
	service, terminal, journal := setupService(t)
	terminal.SetError(fmt.Errorf("Terminal.OrderSend: %w", context.DeadlineExceeded))

	_, err := service.PlaceOrder(context.Background(), buyStop())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	terminal.SetError(errors.New("connection refused"))
	_, err = service.ModifyPosition(context.Background(), domain.StopsUpdate{Position: 70001, Symbol: "EURUSD", StopLoss: 1.08})
	require.Error(t, err)

	history, err := journal.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	byAction := map[string]JournalEntry{}
	for _, e := range history {
		byAction[e.Action] = e
	}
	assert.True(t, byAction["PENDING"].OutcomeUnknown)
	assert.False(t, byAction["SLTP"].OutcomeUnknown)
}

func TestTradingService_CancelAndModify(t *testing.T) {
	service, terminal, _ := setupService(t)
	ctx := context.Background()

	terminal.SetTradeResult(domain.RetcodeDone, 50001, "")
	cancelled, err := service.CancelOrder(ctx, 50001)
	require.NoError(t, err)
	assert.True(t, cancelled.Succeeded())

	terminal.SetTradeResult(domain.RetcodeInvalidStops, 0, "Invalid stops")
	modified, err := service.ModifyPosition(ctx, domain.StopsUpdate{Position: 70001, Symbol: "EURUSD", StopLoss: 1.08, TakeProfit: 1.095})
	require.NoError(t, err)
	assert.False(t, modified.Applied)

	history, err := service.History("", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	byAction := map[string]JournalEntry{}
	for _, e := range history {
		byAction[e.Action] = e
	}
	assert.Equal(t, uint64(50001), byAction["REMOVE"].OrderTicket)
	assert.True(t, byAction["REMOVE"].Success)
	assert.Equal(t, uint64(70001), byAction["SLTP"].PositionTicket)
	assert.False(t, byAction["SLTP"].Success)

	eurusd, err := service.History("EURUSD", 10)
	require.NoError(t, err)
	assert.Len(t, eurusd, 1)
}

func TestTradingService_JournalFailureDoesNotFailTrade(t *testing.T) {
	terminal := testingpkg.NewMockTerminal("USDJPY")
	terminal.SetTradeResult(domain.RetcodeDone, 7, "")
	session, err := mt5.Open(context.Background(), terminal, domain.Credentials{Login: 1, Server: "Demo"}, zerolog.Nop())
	require.NoError(t, err)

	service := NewTradingService(session, failingJournal{}, zerolog.Nop())
	result, err := service.PlaceOrder(context.Background(), buyStop())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), result.Ticket())
}
