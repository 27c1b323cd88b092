// Package portfolio keeps point-in-time copies of the open positions.
package portfolio

import (
	"time"

	"github.com/aristath/mt5-trader/internal/domain"
)

// Snapshot is every open position as seen at one instant.
type Snapshot struct {
	TakenAt   time.Time         `json:"taken_at"`
	Positions []domain.Position `json:"positions"`
}

// TotalProfit sums the floating profit of the snapshot.
func (s Snapshot) TotalProfit() float64 {
	total := 0.0
	for _, p := range s.Positions {
		total += p.Profit
	}
	return total
}

// SymbolExposure returns net volume per symbol. Sell positions count negative.
func (s Snapshot) SymbolExposure() map[string]float64 {
	exposure := make(map[string]float64)
	for _, p := range s.Positions {
		if p.Type == domain.PositionSell {
			exposure[p.Symbol] -= p.Volume
		} else {
			exposure[p.Symbol] += p.Volume
		}
	}
	return exposure
}
