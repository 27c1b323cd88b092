package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/aristath/mt5-trader/internal/di"
	"github.com/aristath/mt5-trader/internal/domain"
	"github.com/aristath/mt5-trader/internal/modules/market"
	"github.com/aristath/mt5-trader/internal/server"
	"github.com/aristath/mt5-trader/internal/utils"
)

var commands = []*cli.Command{
	loginCommand,
	symbolsCommand,
	ratesCommand,
	ticksCommand,
	placeCommand,
	cancelCommand,
	modifyCommand,
	ordersCommand,
	positionsCommand,
	journalCommand,
	serveCommand,
	backupCommand,
}

var loginCommand = &cli.Command{
	Name:   "login",
	Usage:  "logs in, enables the configured symbols and reports the session",
	Action: login,
}

var symbolsCommand = &cli.Command{
	Name:  "symbols",
	Usage: "lists or enables symbols",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "lists every symbol the terminal knows",
			Action: listSymbols,
		},
		{
			Name:      "enable",
			Usage:     "adds symbols to Market Watch",
			ArgsUsage: "<symbol,symbol,...>",
			Action:    enableSymbols,
		},
	},
}

var ratesCommand = &cli.Command{
	Name:      "rates",
	Usage:     "fetches bars counted back from the current one",
	ArgsUsage: "<symbol>",
	Action:    getRates,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "timeframe",
			Aliases: []string{"tf"},
			Value:   market.DefaultTimeframe.String(),
			Usage:   "M1..M30, H1..H12, D1, W1 or MN1",
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "bars to skip back from the current one",
		},
		&cli.IntFlag{
			Name:  "count",
			Value: market.DefaultCount,
			Usage: "bars to fetch",
		},
	},
}

var ticksCommand = &cli.Command{
	Name:      "ticks",
	Usage:     "fetches ticks inside a time range",
	ArgsUsage: "<symbol>",
	Action:    getTicks,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Value: market.DefaultTicksFrom.Format(time.RFC3339),
			Usage: "range start, RFC3339",
		},
		&cli.StringFlag{
			Name:  "to",
			Value: market.DefaultTicksTo.Format(time.RFC3339),
			Usage: "range end, RFC3339",
		},
		&cli.StringFlag{
			Name:  "flag",
			Value: domain.TicksAll.String(),
			Usage: "all, info or trade",
		},
	},
}

var placeCommand = &cli.Command{
	Name:   "place",
	Usage:  "places a pending order",
	Action: placeOrder,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "BUY_LIMIT, SELL_LIMIT, BUY_STOP, SELL_STOP, BUY_STOP_LIMIT or SELL_STOP_LIMIT"},
		&cli.StringFlag{Name: "symbol", Required: true},
		&cli.Float64Flag{Name: "volume", Required: true, Usage: "lots"},
		&cli.Float64Flag{Name: "price", Required: true, Usage: "rounded to 3 decimals"},
		&cli.Float64Flag{Name: "sl", Usage: "stop loss, rounded to 3 decimals"},
		&cli.Float64Flag{Name: "tp", Usage: "take profit, rounded to 3 decimals"},
		&cli.StringFlag{Name: "comment"},
	},
}

var cancelCommand = &cli.Command{
	Name:      "cancel",
	Usage:     "removes a pending order",
	ArgsUsage: "<ticket>",
	Action:    cancelOrder,
}

var modifyCommand = &cli.Command{
	Name:      "modify",
	Usage:     "sets stop loss and take profit of an open position",
	ArgsUsage: "<position ticket>",
	Action:    modifyPosition,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "symbol", Required: true},
		&cli.Float64Flag{Name: "sl", Usage: "stop loss, 0 removes it"},
		&cli.Float64Flag{Name: "tp", Usage: "take profit, 0 removes it"},
	},
}

var ordersCommand = &cli.Command{
	Name:   "orders",
	Usage:  "lists open orders",
	Action: listOrders,
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "tickets", Usage: "print only the ticket numbers"},
	},
}

var positionsCommand = &cli.Command{
	Name:   "positions",
	Usage:  "lists open positions",
	Action: listPositions,
}

var journalCommand = &cli.Command{
	Name:   "journal",
	Usage:  "prints the order journal, newest first",
	Action: showJournal,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "symbol", Usage: "only entries for this symbol"},
		&cli.IntFlag{Name: "limit", Value: 50},
	},
}

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "keeps the session open behind the HTTP API and the background jobs",
	Action: serve,
}

var backupCommand = &cli.Command{
	Name:  "backup",
	Usage: "manages database backups in the configured bucket",
	Subcommands: []*cli.Command{
		{
			Name:   "create",
			Usage:  "backs the databases up and uploads the archive",
			Action: createBackup,
		},
		{
			Name:   "list",
			Usage:  "lists the uploaded backups, newest first",
			Action: listBackups,
		},
		{
			Name:   "rotate",
			Usage:  "deletes backups older than the retention window",
			Action: rotateBackups,
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "days", Usage: "retention in days, defaults to BACKUP_RETENTION_DAYS"},
			},
		},
	},
}

// withSession logs in, runs fn and logs out
func withSession(c *cli.Context, fn func(ctx context.Context, container *di.Container) (any, error)) error {
	ctx := c.Context
	container := &di.Container{}
	defer closeContainer(container)

	if err := di.InitializeSession(ctx, container, env.cfg, di.DialBridge, env.log); err != nil {
		return err
	}
	result, err := fn(ctx, container)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// withTrading opens the databases and the session, then builds the services
func withTrading(c *cli.Context, fn func(ctx context.Context, container *di.Container) (any, error)) error {
	ctx := c.Context
	container := &di.Container{}
	defer closeContainer(container)

	if err := di.InitializeDatabases(container, env.cfg, env.log); err != nil {
		return err
	}
	if err := di.InitializeRepositories(container, env.log); err != nil {
		return err
	}
	if err := di.InitializeSession(ctx, container, env.cfg, di.DialBridge, env.log); err != nil {
		return err
	}
	if err := di.InitializeServices(container, env.log); err != nil {
		return err
	}
	result, err := fn(ctx, container)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// withBackups opens the databases and the backup service, no session needed
func withBackups(c *cli.Context, fn func(ctx context.Context, container *di.Container) (any, error)) error {
	ctx := c.Context
	container := &di.Container{}
	defer closeContainer(container)

	if !env.cfg.Backup.Enabled() {
		return errors.New("no backup bucket configured, set BACKUP_S3_BUCKET")
	}
	if err := di.InitializeDatabases(container, env.cfg, env.log); err != nil {
		return err
	}
	if err := di.InitializeBackup(ctx, container, env.cfg, env.log); err != nil {
		return err
	}
	result, err := fn(ctx, container)
	if err != nil {
		return err
	}
	return printJSON(result)
}

type sessionInfo struct {
	Login   int64    `json:"login"`
	Server  string   `json:"server"`
	Symbols []string `json:"symbols"`
}

func login(c *cli.Context) error {
	return withSession(c, func(_ context.Context, container *di.Container) (any, error) {
		return sessionInfo{
			Login:   container.Session.Login(),
			Server:  container.Session.Server(),
			Symbols: env.cfg.Symbols,
		}, nil
	})
}

func listSymbols(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.Session.Symbols(ctx)
	})
}

func enableSymbols(c *cli.Context) error {
	symbols := utils.ParseSymbols(c.Args().First())
	if len(symbols) == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	return withSession(c, func(ctx context.Context, container *di.Container) (any, error) {
		if err := container.Session.EnableSymbols(ctx, symbols); err != nil {
			return nil, err
		}
		return map[string][]string{"enabled": symbols}, nil
	})
}

func getRates(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}
	tf, err := domain.ParseTimeframe(c.String("timeframe"))
	if err != nil {
		return err
	}
	q := market.RatesQuery{
		Symbol:    c.Args().First(),
		Timeframe: tf,
		Offset:    c.Int("offset"),
		Count:     c.Int("count"),
	}
	if err := q.Validate(); err != nil {
		return err
	}
	return withSession(c, func(ctx context.Context, container *di.Container) (any, error) {
		return market.FetchRates(ctx, container.Session, q)
	})
}

func getTicks(c *cli.Context) error {
	q := market.DefaultTicksQuery()
	if c.NArg() > 0 {
		q.Symbol = c.Args().First()
	}

	var err error
	if q.From, err = parseTime(c.String("from")); err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	if q.To, err = parseTime(c.String("to")); err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	if q.Flag, err = domain.ParseTickFlag(c.String("flag")); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	return withSession(c, func(ctx context.Context, container *di.Container) (any, error) {
		return market.FetchTicks(ctx, container.Session, q)
	})
}

func placeOrder(c *cli.Context) error {
	orderType, err := domain.ParseOrderType(c.String("type"))
	if err != nil {
		return err
	}
	order := domain.PendingOrder{
		Type:       orderType,
		Symbol:     c.String("symbol"),
		Volume:     c.Float64("volume"),
		Price:      c.Float64("price"),
		StopLoss:   c.Float64("sl"),
		TakeProfit: c.Float64("tp"),
		Comment:    c.String("comment"),
	}
	return withTrading(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.TradingService.PlaceOrder(ctx, order)
	})
}

func cancelOrder(c *cli.Context) error {
	ticket, err := ticketArg(c)
	if err != nil {
		return err
	}
	return withTrading(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.TradingService.CancelOrder(ctx, ticket)
	})
}

func modifyPosition(c *cli.Context) error {
	ticket, err := ticketArg(c)
	if err != nil {
		return err
	}
	update := domain.StopsUpdate{
		Position:   ticket,
		Symbol:     c.String("symbol"),
		StopLoss:   c.Float64("sl"),
		TakeProfit: c.Float64("tp"),
	}
	return withTrading(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.TradingService.ModifyPosition(ctx, update)
	})
}

func listOrders(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, container *di.Container) (any, error) {
		if c.Bool("tickets") {
			return container.Session.OpenOrderTickets(ctx)
		}
		return container.Session.OpenOrders(ctx)
	})
}

func listPositions(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.Session.OpenPositions(ctx)
	})
}

func showJournal(c *cli.Context) error {
	container := &di.Container{}
	defer closeContainer(container)

	if err := di.InitializeDatabases(container, env.cfg, env.log); err != nil {
		return err
	}
	if err := di.InitializeRepositories(container, env.log); err != nil {
		return err
	}

	limit := c.Int("limit")
	if symbol := c.String("symbol"); symbol != "" {
		entries, err := container.JournalRepo.GetBySymbol(symbol, limit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	}
	entries, err := container.JournalRepo.GetHistory(limit)
	if err != nil {
		return err
	}
	return printJSON(entries)
}

func serve(c *cli.Context) error {
	ctx := c.Context
	log := env.log

	container, jobs, err := di.Wire(ctx, env.cfg, di.DialBridge, log)
	if err != nil {
		return err
	}
	defer closeContainer(container)

	srv := server.New(server.Config{
		Log:          log,
		Port:         env.cfg.Port,
		Session:      container.Session,
		TerminalPath: env.cfg.Path,
		Databases:    container.Databases(),
		Modules: []server.RouteRegistrar{
			container.MarketHandlers,
			container.TradingHandlers,
			container.PortfolioHandlers,
		},
		Jobs: jobs.All(),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	jobs.Scheduler.Start()
	log.Info().Int("port", env.cfg.Port).Msg("Server started successfully")

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case err = <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	jobs.Scheduler.Stop()
	log.Info().Msg("Scheduler stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	return err
}

func createBackup(c *cli.Context) error {
	return withBackups(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.BackupService.CreateAndUpload(ctx)
	})
}

func listBackups(c *cli.Context) error {
	return withBackups(c, func(ctx context.Context, container *di.Container) (any, error) {
		return container.BackupService.List(ctx)
	})
}

func rotateBackups(c *cli.Context) error {
	days := env.cfg.Backup.RetentionDays
	if c.IsSet("days") {
		days = c.Int("days")
	}
	return withBackups(c, func(ctx context.Context, container *di.Container) (any, error) {
		deleted, err := container.BackupService.Rotate(ctx, days)
		if err != nil {
			return nil, err
		}
		return map[string]int{"deleted": deleted, "retention_days": days}, nil
	})
}

func ticketArg(c *cli.Context) (uint64, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("%s needs exactly one ticket", c.Command.Name)
	}
	ticket, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil || ticket == 0 {
		return 0, fmt.Errorf("invalid ticket %q", c.Args().First())
	}
	return ticket, nil
}

// parseTime reads RFC3339 and returns it in UTC
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
