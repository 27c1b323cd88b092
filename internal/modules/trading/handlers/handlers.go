// Package handlers provides HTTP handlers for order management.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/domain"
	"github.com/aristath/mt5-trader/internal/modules/trading"
	"github.com/aristath/mt5-trader/internal/utils"
)

// OrderReader lists open orders. *mt5.Session implements it.
type OrderReader interface {
	OpenOrders(ctx context.Context) ([]domain.Order, error)
	OpenOrderTickets(ctx context.Context) ([]uint64, error)
}

// TradingHandlers contains HTTP handlers for the order API
type TradingHandlers struct {
	orders  OrderReader
	service *trading.TradingService
	log     zerolog.Logger
}

// NewTradingHandlers creates a new trading handlers instance
func NewTradingHandlers(orders OrderReader, service *trading.TradingService, log zerolog.Logger) *TradingHandlers {
	return &TradingHandlers{
		orders:  orders,
		service: service,
		log:     log.With().Str("handler", "trading").Logger(),
	}
}

// PlaceOrderRequest is the body of POST /api/orders
type PlaceOrderRequest struct {
	Type    domain.OrderType `json:"type"`
	Symbol  string           `json:"symbol"`
	Volume  float64          `json:"volume"`
	Price   float64          `json:"price"`
	SL      float64          `json:"sl"`
	TP      float64          `json:"tp"`
	Comment string           `json:"comment"`
}

// ModifyStopsRequest is the body of PUT /api/positions/{ticket}/stops
type ModifyStopsRequest struct {
	Symbol string  `json:"symbol"`
	SL     float64 `json:"sl"`
	TP     float64 `json:"tp"`
}

// HandleGetOrders returns the open orders
// GET /api/orders
func (h *TradingHandlers) HandleGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.OpenOrders(r.Context())
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, orders)
}

// HandleGetOrderTickets returns the ticket of every open order
// GET /api/orders/tickets
func (h *TradingHandlers) HandleGetOrderTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.orders.OpenOrderTickets(r.Context())
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, tickets)
}

// HandlePlaceOrder places a pending order
// POST /api/orders
func (h *TradingHandlers) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, h.log, "invalid request body: "+err.Error())
		return
	}
	if req.Symbol == "" || req.Volume <= 0 || req.Price <= 0 {
		utils.WriteBadRequest(w, h.log, "symbol, volume and price are required")
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), domain.PendingOrder{
		Type:       req.Type,
		Symbol:     req.Symbol,
		Volume:     req.Volume,
		Price:      req.Price,
		StopLoss:   req.SL,
		TakeProfit: req.TP,
		Comment:    req.Comment,
	})
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.WriteJSON(w, h.log, http.StatusCreated, map[string]interface{}{
		"ticket":  result.Ticket(),
		"request": result.Request,
		"result":  result.Result,
	})
}

// HandleCancelOrder removes a pending order. The terminal's answer is
// returned with 200 whatever the retcode.
// DELETE /api/orders/{ticket}
func (h *TradingHandlers) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ticket, err := strconv.ParseUint(chi.URLParam(r, "ticket"), 10, 64)
	if err != nil {
		utils.WriteBadRequest(w, h.log, "invalid ticket")
		return
	}

	result, err := h.service.CancelOrder(r.Context(), ticket)
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"succeeded":   result.Succeeded(),
		"description": domain.RetcodeDescription(result.Result.Retcode),
		"request":     result.Request,
		"result":      result.Result,
	})
}

// HandleModifyStops changes the stop loss and take profit of a position
// PUT /api/positions/{ticket}/stops
func (h *TradingHandlers) HandleModifyStops(w http.ResponseWriter, r *http.Request) {
	ticket, err := strconv.ParseUint(chi.URLParam(r, "ticket"), 10, 64)
	if err != nil {
		utils.WriteBadRequest(w, h.log, "invalid ticket")
		return
	}

	var req ModifyStopsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteBadRequest(w, h.log, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.ModifyPosition(r.Context(), domain.StopsUpdate{
		Position:   ticket,
		Symbol:     req.Symbol,
		StopLoss:   req.SL,
		TakeProfit: req.TP,
	})
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	utils.WriteJSON(w, h.log, http.StatusOK, result)
}

// HandleGetJournal returns recent order journal entries
// GET /api/journal?limit=50&symbol=EURUSD
func (h *TradingHandlers) HandleGetJournal(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	entries, err := h.service.History(r.URL.Query().Get("symbol"), limit)
	if err != nil {
		utils.WriteInternalError(w, h.log, "Failed to get order journal", err)
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, entries)
}
