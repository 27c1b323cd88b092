// Package main is the mt5trader command line client.
// Every command logs in to the terminal, does one thing, prints the result as
// JSON on stdout and logs out again. The serve command keeps the session open
// behind the HTTP API and the background jobs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/aristath/mt5-trader/internal/config"
	"github.com/aristath/mt5-trader/internal/di"
	"github.com/aristath/mt5-trader/internal/domain"
	"github.com/aristath/mt5-trader/pkg/logger"
)

var (
	settingsPath string
	logLevel     string
)

// app state shared by the commands, filled in by loadEnv
type environment struct {
	cfg *config.Config
	log zerolog.Logger
	out io.Writer
}

var env = environment{out: os.Stdout}

func main() {
	app := cli.NewApp()
	app.Name = "mt5trader"
	app.Usage = "drive a MetaTrader 5 terminal from the command line"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "settings",
			Aliases:     []string{"s"},
			Value:       "settings.json",
			Usage:       "the settings file holding the account credentials",
			Destination: &settingsPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "debug, info, warn or error; overrides LOG_LEVEL",
			Destination: &logLevel,
		},
	}
	app.Before = loadEnv
	app.Commands = commands

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		var fatal *domain.FatalError
		if errors.As(err, &fatal) {
			log.Fatal().Err(err).Msg("Terminal bootstrap failed")
		}
		log.Fatal().Err(err).Msg("Command failed")
	}
}

// loadEnv reads the configuration and sets up logging before any command runs
func loadEnv(c *cli.Context) error {
	cfg, err := config.Load(settingsPath)
	if err != nil {
		logger.SetGlobalLogger(logger.New(logger.Config{Level: "info", Pretty: true}))
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	env.cfg = cfg
	env.log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(env.log)
	return nil
}

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(env.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// closeContainer releases the container with a bounded context so a hung
// terminal cannot block exit
func closeContainer(container *di.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Close(ctx); err != nil {
		env.log.Warn().Err(err).Msg("Shutdown was incomplete")
	}
}
