package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/config"
)

// Wire initializes everything the serve command needs
// Order of operations:
// 1. Initialize databases
// 2. Initialize repositories
// 3. Open the terminal session
// 4. Initialize services and backups
// 5. Register jobs
//
// On error the partially built container is closed.
func Wire(ctx context.Context, cfg *config.Config, dial DialFunc, log zerolog.Logger) (*Container, *JobInstances, error) {
	container := &Container{}

	fail := func(err error) (*Container, *JobInstances, error) {
		if closeErr := container.Close(ctx); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Cleanup after failed startup was incomplete")
		}
		return nil, nil, err
	}

	if err := InitializeDatabases(container, cfg, log); err != nil {
		return fail(err)
	}
	if err := InitializeRepositories(container, log); err != nil {
		return fail(fmt.Errorf("failed to initialize repositories: %w", err))
	}
	if err := InitializeSession(ctx, container, cfg, dial, log); err != nil {
		return fail(err)
	}
	if err := InitializeServices(container, log); err != nil {
		return fail(fmt.Errorf("failed to initialize services: %w", err))
	}
	if err := InitializeBackup(ctx, container, cfg, log); err != nil {
		return fail(err)
	}

	jobs, err := RegisterJobs(container, cfg, log)
	if err != nil {
		return fail(err)
	}

	return container, jobs, nil
}
