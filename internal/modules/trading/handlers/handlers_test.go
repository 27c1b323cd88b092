package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/mt5-trader/internal/clients/mt5"
	"github.com/aristath/mt5-trader/internal/domain"
	"github.com/aristath/mt5-trader/internal/modules/trading"
	testingpkg "github.com/aristath/mt5-trader/internal/testing"
)

func setupRouter(t *testing.T) (chi.Router, *testingpkg.MockTerminal) {
	t.Helper()
	logger := zerolog.Nop()

	terminal := testingpkg.NewMockTerminal("USDJPY", "EURUSD")
	terminal.Orders = testingpkg.NewOrderFixtures()
	session, err := mt5.Open(context.Background(), terminal, domain.Credentials{Login: 1, Server: "Demo"}, logger)
	require.NoError(t, err)

	db := testingpkg.NewTestDB(t, "ledger")
	service := trading.NewTradingService(session, trading.NewJournalRepository(db.Conn(), logger), logger)

	router := chi.NewRouter()
	router.Route("/api", NewTradingHandlers(session, service, logger).RegisterRoutes)
	return router, terminal
}

func doRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data     json.RawMessage        `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Contains(t, envelope.Metadata, "timestamp")
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestHandleGetOrders(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, "GET", "/api/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var orders []map[string]interface{}
	decodeData(t, w, &orders)
	require.Len(t, orders, 2)
	assert.Equal(t, "BUY_STOP", orders[0]["type"])
	assert.Equal(t, "USDJPY", orders[0]["symbol"])
}

func TestHandleGetOrderTickets(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, "GET", "/api/orders/tickets", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var tickets []uint64
	decodeData(t, w, &tickets)
	assert.Equal(t, []uint64{50001, 50002}, tickets)
}

func TestHandlePlaceOrder(t *testing.T) {
	t.Run("placed", func(t *testing.T) {
		router, terminal := setupRouter(t)
		terminal.SetTradeResult(domain.RetcodeDone, 50003, "Request executed")

		w := doRequest(router, "POST", "/api/orders", map[string]interface{}{
			"type": "BUY_STOP", "symbol": "USDJPY", "volume": 1.0,
			"price": 150.123456, "sl": 149.0, "tp": 151.0, "comment": "test",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var data map[string]interface{}
		decodeData(t, w, &data)
		assert.Equal(t, float64(50003), data["ticket"])

		sent, ok := terminal.LastRequest()
		require.True(t, ok)
		assert.Equal(t, 150.123, sent.Price)
	})

	t.Run("rejected", func(t *testing.T) {
		router, terminal := setupRouter(t)
		terminal.SetTradeResult(domain.RetcodeNoMoney, 0, "No money")

		w := doRequest(router, "POST", "/api/orders", map[string]interface{}{
			"type": "SELL_LIMIT", "symbol": "EURUSD", "volume": 1.0, "price": 1.1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		details := body["details"].(map[string]interface{})
		assert.Equal(t, float64(10019), details["retcode"])
	})

	t.Run("market type", func(t *testing.T) {
		router, terminal := setupRouter(t)

		w := doRequest(router, "POST", "/api/orders", map[string]interface{}{
			"type": "BUY", "symbol": "EURUSD", "volume": 1.0, "price": 1.1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, terminal.SentRequests)
	})

	t.Run("unknown type", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doRequest(router, "POST", "/api/orders", map[string]interface{}{
			"type": "BUY_TRAILING", "symbol": "EURUSD", "volume": 1.0, "price": 1.1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doRequest(router, "POST", "/api/orders", map[string]interface{}{"type": "BUY_LIMIT"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleCancelOrder(t *testing.T) {
	router, terminal := setupRouter(t)
	terminal.SetTradeResult(domain.RetcodeInvalid, 0, "Invalid request")

	w := doRequest(router, "DELETE", "/api/orders/50001", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var data map[string]interface{}
	decodeData(t, w, &data)
	assert.Equal(t, false, data["succeeded"])
	assert.Equal(t, "invalid request", data["description"])

	w = doRequest(router, "DELETE", "/api/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleModifyStops(t *testing.T) {
	router, terminal := setupRouter(t)
	terminal.SetTradeResult(domain.RetcodeDone, 0, "")

	w := doRequest(router, "PUT", "/api/positions/70001/stops", map[string]interface{}{
		"symbol": "EURUSD", "sl": 1.08, "tp": 1.095,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var result domain.ModifyResult
	decodeData(t, w, &result)
	assert.True(t, result.Applied)
	assert.Equal(t, uint64(70001), result.Request.Position)
}

func TestHandleGetJournal(t *testing.T) {
	router, terminal := setupRouter(t)
	terminal.SetTradeResult(domain.RetcodeDone, 1, "")

	doRequest(router, "DELETE", "/api/orders/1", nil)
	doRequest(router, "DELETE", "/api/orders/2", nil)

	w := doRequest(router, "GET", "/api/journal?limit=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var entries []trading.JournalEntry
	decodeData(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "REMOVE", entries[0].Action)
}

// unreadableJournal accepts writes but fails every read.
type unreadableJournal struct {
	trading.JournalRepositoryInterface
}

func (unreadableJournal) GetHistory(int) ([]trading.JournalEntry, error) {
	return nil, errors.New("database is locked")
}

func TestHandleGetJournal_StorageFailure(t *testing.T) {
	logger := zerolog.Nop()
	session, err := mt5.Open(context.Background(), testingpkg.NewMockTerminal(), domain.Credentials{Login: 1, Server: "Demo"}, logger)
	require.NoError(t, err)
	service := trading.NewTradingService(session, unreadableJournal{}, logger)

	router := chi.NewRouter()
	router.Route("/api", NewTradingHandlers(session, service, logger).RegisterRoutes)

	w := doRequest(router, "GET", "/api/journal", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Failed to get order journal", body.Error)
}

func TestHandlers_SessionClosed(t *testing.T) {
	logger := zerolog.Nop()
	terminal := testingpkg.NewMockTerminal()
	session, err := mt5.Open(context.Background(), terminal, domain.Credentials{Login: 1, Server: "Demo"}, logger)
	require.NoError(t, err)
	require.NoError(t, session.Close(context.Background()))

	db := testingpkg.NewTestDB(t, "ledger")
	service := trading.NewTradingService(session, trading.NewJournalRepository(db.Conn(), logger), logger)

	router := chi.NewRouter()
	router.Route("/api", NewTradingHandlers(session, service, logger).RegisterRoutes)

	w := doRequest(router, "GET", "/api/orders", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
