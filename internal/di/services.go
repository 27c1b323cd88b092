package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/config"
	markethandlers "github.com/aristath/mt5-trader/internal/modules/market/handlers"
	portfoliohandlers "github.com/aristath/mt5-trader/internal/modules/portfolio/handlers"
	"github.com/aristath/mt5-trader/internal/modules/trading"
	tradinghandlers "github.com/aristath/mt5-trader/internal/modules/trading/handlers"
	"github.com/aristath/mt5-trader/internal/reliability"
)

// InitializeServices creates the services and HTTP handlers.
// Requires the session and the repositories.
func InitializeServices(container *Container, log zerolog.Logger) error {
	if container.Session == nil {
		return fmt.Errorf("terminal session is not initialized")
	}
	if container.JournalRepo == nil || container.SnapshotRepo == nil {
		return fmt.Errorf("repositories are not initialized")
	}

	container.TradingService = trading.NewTradingService(container.Session, container.JournalRepo, log)

	container.MarketHandlers = markethandlers.NewHandler(container.Session, log)
	container.TradingHandlers = tradinghandlers.NewTradingHandlers(container.Session, container.TradingService, log)
	container.PortfolioHandlers = portfoliohandlers.NewHandler(container.Session, container.SnapshotRepo, log)
	return nil
}

// InitializeBackup creates the backup service when a bucket is configured.
// Requires the databases.
func InitializeBackup(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if !cfg.Backup.Enabled() {
		log.Info().Msg("Backups disabled, no bucket configured")
		return nil
	}

	store, err := reliability.NewS3Client(ctx, cfg.Backup, log)
	if err != nil {
		return fmt.Errorf("failed to create backup storage client: %w", err)
	}
	container.BackupService = reliability.NewBackupService(store, cfg.DataDir, log, container.Databases()...)
	return nil
}
