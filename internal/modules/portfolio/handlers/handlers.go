// Package handlers provides HTTP handlers for open positions.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/modules/portfolio"
	"github.com/aristath/mt5-trader/internal/utils"
)

// SnapshotReader returns the newest stored snapshot
type SnapshotReader interface {
	Latest() (*portfolio.Snapshot, error)
}

// Handler handles position HTTP requests
type Handler struct {
	positions portfolio.PositionReader
	snapshots SnapshotReader
	log       zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(positions portfolio.PositionReader, snapshots SnapshotReader, log zerolog.Logger) *Handler {
	return &Handler{
		positions: positions,
		snapshots: snapshots,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// RegisterRoutes registers the position routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/positions", h.HandleGetPositions)
	r.Get("/positions/snapshots/latest", h.HandleGetLatestSnapshot)
}

// HandleGetPositions returns the open positions with summary figures
// GET /api/positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positions.OpenPositions(r.Context())
	if err != nil {
		utils.WriteError(w, h.log, err)
		return
	}

	summary := portfolio.Snapshot{Positions: positions}
	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"positions":    positions,
		"count":        len(positions),
		"total_profit": summary.TotalProfit(),
		"exposure":     summary.SymbolExposure(),
	})
}

// HandleGetLatestSnapshot returns the newest stored snapshot
// GET /api/positions/snapshots/latest
func (h *Handler) HandleGetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshots.Latest()
	if err != nil {
		utils.WriteInternalError(w, h.log, "Failed to get latest snapshot", err)
		return
	}
	if snapshot == nil {
		utils.WriteNotFound(w, h.log, "no snapshot taken yet")
		return
	}
	utils.WriteJSON(w, h.log, http.StatusOK, snapshot)
}
