package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/mt5-trader/internal/clients/mt5"
	"github.com/aristath/mt5-trader/internal/domain"
	"github.com/aristath/mt5-trader/internal/modules/portfolio"
	testingpkg "github.com/aristath/mt5-trader/internal/testing"
)

func setupRouter(t *testing.T, terminal *testingpkg.MockTerminal) (chi.Router, *portfolio.SnapshotRepository) {
	t.Helper()
	logger := zerolog.Nop()

	session, err := mt5.Open(context.Background(), terminal, domain.Credentials{Login: 1, Server: "Demo"}, logger)
	require.NoError(t, err)

	repo := portfolio.NewSnapshotRepository(testingpkg.NewTestDB(t, "portfolio").Conn(), logger)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(session, repo, logger).RegisterRoutes)
	return router, repo
}

func TestHandleGetPositions(t *testing.T) {
	terminal := testingpkg.NewMockTerminal()
	terminal.Positions = testingpkg.NewPositionFixtures()
	router, _ := setupRouter(t, terminal)

	req := httptest.NewRequest("GET", "/api/positions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Positions   []map[string]interface{} `json:"positions"`
			Count       int                      `json:"count"`
			TotalProfit float64                  `json:"total_profit"`
			Exposure    map[string]float64       `json:"exposure"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Data.Count)
	assert.InDelta(t, 276.1, response.Data.TotalProfit, 1e-9)
	assert.Equal(t, "SELL", response.Data.Positions[1]["type"])
	assert.Equal(t, -0.3, response.Data.Exposure["USDJPY"])
}

func TestHandleGetPositions_TerminalDown(t *testing.T) {
	terminal := testingpkg.NewMockTerminal()
	router, _ := setupRouter(t, terminal)
	terminal.SetError(assert.AnError)

	req := httptest.NewRequest("GET", "/api/positions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleGetLatestSnapshot(t *testing.T) {
	router, repo := setupRouter(t, testingpkg.NewMockTerminal())

	req := httptest.NewRequest("GET", "/api/positions/snapshots/latest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	takenAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(takenAt, []domain.Position{
		{Ticket: 1, Symbol: "EURUSD", Volume: 0.5, Time: takenAt},
	}))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/positions/snapshots/latest", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			TakenAt   time.Time                `json:"taken_at"`
			Positions []map[string]interface{} `json:"positions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Data.TakenAt.Equal(takenAt))
	require.Len(t, response.Data.Positions, 1)
	assert.Equal(t, "EURUSD", response.Data.Positions[0]["symbol"])
}

type brokenSnapshots struct{}

func (brokenSnapshots) Latest() (*portfolio.Snapshot, error) {
	return nil, errors.New("database disk image is malformed")
}

func TestHandleGetLatestSnapshot_StorageFailure(t *testing.T) {
	logger := zerolog.Nop()
	session, err := mt5.Open(context.Background(), testingpkg.NewMockTerminal(), domain.Credentials{Login: 1, Server: "Demo"}, logger)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(session, brokenSnapshots{}, logger).RegisterRoutes)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/positions/snapshots/latest", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Failed to get latest snapshot", body.Error)
}
