package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trading routes
func (h *TradingHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.HandleGetOrders)
		r.Get("/tickets", h.HandleGetOrderTickets)
		r.Post("/", h.HandlePlaceOrder)
		r.Delete("/{ticket}", h.HandleCancelOrder)
	})

	r.Put("/positions/{ticket}/stops", h.HandleModifyStops)
	r.Get("/journal", h.HandleGetJournal)
}
