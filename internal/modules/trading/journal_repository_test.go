package trading

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/aristath/mt5-trader/internal/testing"
)

func newTestJournal(t *testing.T) *JournalRepository {
	t.Helper()
	db := testingpkg.NewTestDB(t, "ledger")
	return NewJournalRepository(db.Conn(), zerolog.Nop())
}

func TestJournalRepository_CreateAssignsIDAndTime(t *testing.T) {
	repo := newTestJournal(t)

	entry, err := repo.Create(JournalEntry{
		Action:        "PENDING",
		Symbol:        " usdjpy ",
		OrderType:     "BUY_STOP",
		Volume:        1.0,
		Price:         150.123,
		SL:            149.0,
		TP:            151.0,
		Comment:       "test",
		Retcode:       10009,
		ResultOrder:   50001,
		ResultComment: "Request executed",
		Success:       true,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(entry.ID)
	assert.NoError(t, err)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.Equal(t, "USDJPY", entry.Symbol)

	stored, err := repo.GetByID(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "BUY_STOP", stored.OrderType)
	assert.Equal(t, 150.123, stored.Price)
	assert.Equal(t, uint32(10009), stored.Retcode)
	assert.Equal(t, uint64(50001), stored.ResultOrder)
	assert.True(t, stored.Success)
	assert.Equal(t, entry.CreatedAt.UnixMilli(), stored.CreatedAt.UnixMilli())
}

func TestJournalRepository_CreateRequiresAction(t *testing.T) {
	repo := newTestJournal(t)

	_, err := repo.Create(JournalEntry{Symbol: "EURUSD"})
	assert.Error(t, err)
}

func TestJournalRepository_GetByIDMissing(t *testing.T) {
	repo := newTestJournal(t)

	entry, err := repo.GetByID("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestJournalRepository_HistoryNewestFirst(t *testing.T) {
	repo := newTestJournal(t)
	base := time.Date(2023, 5, 17, 9, 0, 0, 0, time.UTC)

	for i, symbol := range []string{"EURUSD", "USDJPY", "EURUSD"} {
		_, err := repo.Create(JournalEntry{
			Action:    "PENDING",
			Symbol:    symbol,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	history, err := repo.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, base.Add(2*time.Minute), history[0].CreatedAt)
	assert.Equal(t, base, history[2].CreatedAt)

	limited, err := repo.GetHistory(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	eurusd, err := repo.GetBySymbol("eurusd", 0)
	require.NoError(t, err)
	require.Len(t, eurusd, 2)
	for _, e := range eurusd {
		assert.Equal(t, "EURUSD", e.Symbol)
	}
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 50, normalizeLimit(0))
	assert.Equal(t, 50, normalizeLimit(-3))
	assert.Equal(t, 7, normalizeLimit(7))
	assert.Equal(t, 1000, normalizeLimit(5000))
}
