// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"errors"
	"io"

	"github.com/aristath/mt5-trader/internal/clients/mt5"
	"github.com/aristath/mt5-trader/internal/database"
	markethandlers "github.com/aristath/mt5-trader/internal/modules/market/handlers"
	"github.com/aristath/mt5-trader/internal/modules/portfolio"
	portfoliohandlers "github.com/aristath/mt5-trader/internal/modules/portfolio/handlers"
	"github.com/aristath/mt5-trader/internal/modules/trading"
	tradinghandlers "github.com/aristath/mt5-trader/internal/modules/trading/handlers"
	"github.com/aristath/mt5-trader/internal/reliability"
)

// Container holds all application dependencies.
// Fields stay nil for the parts a command did not ask for.
type Container struct {
	// Databases
	LedgerDB    *database.DB // ledger.db - order journal
	PortfolioDB *database.DB // portfolio.db - position snapshots

	// Terminal
	Bridge  io.Closer // Connection under the session
	Session *mt5.Session

	// Repositories
	JournalRepo  *trading.JournalRepository
	SnapshotRepo *portfolio.SnapshotRepository

	// Services
	TradingService *trading.TradingService
	BackupService  *reliability.BackupService // nil when no bucket is configured

	// HTTP handlers
	MarketHandlers    *markethandlers.Handler
	TradingHandlers   *tradinghandlers.TradingHandlers
	PortfolioHandlers *portfoliohandlers.Handler
}

// Databases returns the open databases
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.LedgerDB, c.PortfolioDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close shuts the session down first, then the bridge and the databases
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Session != nil {
		errs = append(errs, c.Session.Close(ctx))
	}
	if c.Bridge != nil {
		errs = append(errs, c.Bridge.Close())
	}
	for _, db := range c.Databases() {
		errs = append(errs, db.Close())
	}
	return errors.Join(errs...)
}
