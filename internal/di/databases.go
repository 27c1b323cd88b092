package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/config"
	"github.com/aristath/mt5-trader/internal/database"
	"github.com/aristath/mt5-trader/internal/modules/portfolio"
	"github.com/aristath/mt5-trader/internal/modules/trading"
)

// InitializeDatabases opens ledger.db and portfolio.db and applies schemas
func InitializeDatabases(container *Container, cfg *config.Config, log zerolog.Logger) error {
	// 1. ledger.db - order journal, append-only
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	// 2. portfolio.db - position snapshots
	portfolioDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "portfolio.db"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize portfolio database: %w", err)
	}
	container.PortfolioDB = portfolioDB

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized")
	return nil
}

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.LedgerDB == nil || container.PortfolioDB == nil {
		return fmt.Errorf("databases are not initialized")
	}
	container.JournalRepo = trading.NewJournalRepository(container.LedgerDB.Conn(), log)
	container.SnapshotRepo = portfolio.NewSnapshotRepository(container.PortfolioDB.Conn(), log)
	return nil
}
