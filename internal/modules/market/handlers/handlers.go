// Package handlers provides HTTP handlers for symbols and market data.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/domain"
	"github.com/aristath/mt5-trader/internal/modules/market"
	"github.com/aristath/mt5-trader/internal/utils"
)

// Handler handles market data HTTP requests
type Handler struct {
	source market.DataSource
	log    zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(source market.DataSource, log zerolog.Logger) *Handler {
	return &Handler{
		source: source,
		log:    log.With().Str("handler", "market").Logger(),
	}
}

// EnableSymbolsRequest is the body of POST /api/symbols/enable
type EnableSymbolsRequest struct {
	Symbols []string `json:"symbols"`
}

// RegisterRoutes registers the market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/symbols", func(r chi.Router) {
		r.Get("/", h.HandleGetSymbols)
		r.Post("/enable", h.HandleEnableSymbols)
	})
	r.Get("/rates/{symbol}", h.HandleGetRates)
	r.Get("/ticks/{symbol}", h.HandleGetTicks)
}

// HandleGetSymbols returns the terminal's symbol catalog
// GET /api/symbols
func (h *Handler) HandleGetSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.source.Symbols(r.Context())
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, symbols)
}

// HandleEnableSymbols adds symbols to Market Watch in the given order
// POST /api/symbols/enable
func (h *Handler) HandleEnableSymbols(w http.ResponseWriter, r *http.Request) {
	var req EnableSymbolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, h.log, "invalid request body: "+err.Error())
		return
	}

	symbols := utils.ParseSymbols(strings.Join(req.Symbols, ","))
	if len(symbols) == 0 {
		utils.WriteBadRequest(w, h.log, "symbols are required")
		return
	}
	if err := h.source.EnableSymbols(r.Context(), symbols); err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"enabled": symbols,
	})
}

// HandleGetRates returns bars counted back from the current one
// GET /api/rates/{symbol}?timeframe=H4&offset=1&count=100
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	query, err := parseRatesQuery(chi.URLParam(r, "symbol"), r.URL.Query())
	if err != nil {
		utils.WriteBadRequest(w, h.log, err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		utils.WriteBadRequest(w, h.log, err.Error())
		return
	}

	candles, err := h.source.Rates(r.Context(), query.Symbol, query.Timeframe, query.Offset, query.Count)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"symbol":    query.Symbol,
		"timeframe": query.Timeframe.String(),
		"candles":   candles,
	})
}

// HandleGetTicks returns ticks inside a UTC range
// GET /api/ticks/{symbol}?from=RFC3339&to=RFC3339&flags=all
func (h *Handler) HandleGetTicks(w http.ResponseWriter, r *http.Request) {
	query, err := parseTicksQuery(chi.URLParam(r, "symbol"), r.URL.Query())
	if err != nil {
		utils.WriteBadRequest(w, h.log, err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		utils.WriteBadRequest(w, h.log, err.Error())
		return
	}

	ticks, err := h.source.TicksRange(r.Context(), query.Symbol, query.From, query.To, query.Flag)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"symbol": query.Symbol,
		"from":   query.From,
		"to":     query.To,
		"ticks":  ticks,
	})
}

// parseRatesQuery fills the query from the URL, falling back to the defaults.
func parseRatesQuery(symbol string, values url.Values) (market.RatesQuery, error) {
	query := market.RatesQuery{
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Timeframe: market.DefaultTimeframe,
		Count:     market.DefaultCount,
	}

	if tf := values.Get("timeframe"); tf != "" {
		parsed, err := domain.ParseTimeframe(tf)
		if err != nil {
			return query, err
		}
		query.Timeframe = parsed
	}

	var err error
	if query.Offset, err = intParam(values, "offset", 0); err != nil {
		return query, err
	}
	if query.Count, err = intParam(values, "count", market.DefaultCount); err != nil {
		return query, err
	}
	return query, nil
}

func parseTicksQuery(symbol string, values url.Values) (market.TicksQuery, error) {
	query := market.DefaultTicksQuery()
	query.Symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var err error
	if query.From, err = timeParam(values, "from", query.From); err != nil {
		return query, err
	}
	if query.To, err = timeParam(values, "to", query.To); err != nil {
		return query, err
	}
	if query.Flag, err = domain.ParseTickFlag(values.Get("flags")); err != nil {
		return query, err
	}
	return query, nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return n, nil
}

func timeParam(values url.Values, name string, def time.Time) (time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &paramError{name: name, value: raw}
	}
	return t.UTC(), nil
}

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.name, e.value)
}
