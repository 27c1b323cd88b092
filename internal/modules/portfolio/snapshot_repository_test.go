package portfolio

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/mt5-trader/internal/domain"
	testingpkg "github.com/aristath/mt5-trader/internal/testing"
)

func samplePositions() []domain.Position {
	opened := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []domain.Position{
		{Ticket: 70001, Time: opened, Type: domain.PositionBuy, Volume: 1, PriceOpen: 1.0861, PriceCurrent: 1.0876, StopLoss: 1.08, TakeProfit: 1.095, Swap: -0.42, Profit: 150, Symbol: "EURUSD"},
		{Ticket: 70002, Time: opened.Add(time.Hour), Type: domain.PositionSell, Volume: 0.3, PriceOpen: 150.5, PriceCurrent: 149.87, Profit: 126.1, Magic: 7, Symbol: "USDJPY", Comment: "hedge"},
	}
}

func newRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	db := testingpkg.NewTestDB(t, "portfolio")
	return NewSnapshotRepository(db.Conn(), zerolog.Nop())
}

func TestSnapshotRepository_LatestEmpty(t *testing.T) {
	repo := newRepo(t)

	snapshot, err := repo.Latest()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestSnapshotRepository_SaveAndLatest(t *testing.T) {
	repo := newRepo(t)
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)

	require.NoError(t, repo.Save(first, samplePositions()))
	require.NoError(t, repo.Save(second, samplePositions()[:1]))

	snapshot, err := repo.Latest()
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.True(t, snapshot.TakenAt.Equal(second))
	require.Len(t, snapshot.Positions, 1)
	assert.Equal(t, samplePositions()[0], withIdentifier(snapshot.Positions[0], 0))
}

func TestSnapshotRepository_RoundTripsFields(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Save(time.Now(), samplePositions()))

	snapshot, err := repo.Latest()
	require.NoError(t, err)
	require.Len(t, snapshot.Positions, 2)

	sell := snapshot.Positions[1]
	assert.Equal(t, uint64(70002), sell.Ticket)
	assert.Equal(t, domain.PositionSell, sell.Type)
	assert.Equal(t, uint64(7), sell.Magic)
	assert.Equal(t, "hedge", sell.Comment)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), sell.Time)
}

func TestSnapshotRepository_SaveEmptyWritesNothing(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Save(time.Now(), nil))

	snapshot, err := repo.Latest()
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestSnapshotRepository_Prune(t *testing.T) {
	repo := newRepo(t)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(48 * time.Hour)

	require.NoError(t, repo.Save(old, samplePositions()))
	require.NoError(t, repo.Save(recent, samplePositions()))

	removed, err := repo.Prune(old.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	snapshot, err := repo.Latest()
	require.NoError(t, err)
	assert.True(t, snapshot.TakenAt.Equal(recent))
}

func TestSnapshot_Summaries(t *testing.T) {
	snapshot := Snapshot{Positions: samplePositions()}

	assert.InDelta(t, 276.1, snapshot.TotalProfit(), 1e-9)
	assert.Equal(t, map[string]float64{"EURUSD": 1, "USDJPY": -0.3}, snapshot.SymbolExposure())
}

// withIdentifier resets the identifier Latest fills from the ticket.
func withIdentifier(p domain.Position, id uint64) domain.Position {
	p.Identifier = id
	return p
}
