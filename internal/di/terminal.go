package di

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/clients/mt5"
	"github.com/aristath/mt5-trader/internal/clients/mt5/sdk"
	"github.com/aristath/mt5-trader/internal/config"
)

// TerminalConn is a terminal client that owns a connection
type TerminalConn interface {
	mt5.Terminal
	io.Closer
}

// DialFunc connects to the terminal bridge
type DialFunc func(cfg *config.Config, log zerolog.Logger) (TerminalConn, error)

// DialBridge dials the bridge at cfg.BridgeAddr
func DialBridge(cfg *config.Config, log zerolog.Logger) (TerminalConn, error) {
	client, err := sdk.Dial(cfg.BridgeAddr, cfg.DialTimeout, cfg.CallTimeout, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// InitializeSession connects, logs in and enables the configured symbols.
// Initialization and login failures come back as *domain.FatalError.
func InitializeSession(ctx context.Context, container *Container, cfg *config.Config, dial DialFunc, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	conn, err := dial(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to terminal bridge at %s: %w", cfg.BridgeAddr, err)
	}
	container.Bridge = conn

	mt5.LogTerminalProcess(ctx, cfg.Path, log)

	session, err := mt5.Open(ctx, conn, cfg.Credentials(), log)
	if err != nil {
		return err
	}
	container.Session = session

	if len(cfg.Symbols) > 0 {
		if err := session.EnableSymbols(ctx, cfg.Symbols); err != nil {
			return fmt.Errorf("failed to enable configured symbols: %w", err)
		}
	}
	return nil
}
