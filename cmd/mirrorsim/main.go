package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/mirrorsim/config"
	"github.com/alejandrodnm/mirrorsim/internal/adapters/notify"
	"github.com/alejandrodnm/mirrorsim/internal/adapters/polymarket"
	"github.com/alejandrodnm/mirrorsim/internal/adapters/storage"
	"github.com/alejandrodnm/mirrorsim/internal/ports"
	"github.com/alejandrodnm/mirrorsim/internal/runner"
	"github.com/alejandrodnm/mirrorsim/internal/sim"
	"github.com/alejandrodnm/mirrorsim/internal/stats"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	wallet := flag.String("wallet", "", "single wallet address to simulate")
	input := flag.String("input", "", "path to JSON/CSV file with wallet addresses")
	budget := flag.Int("budget", 0, "stop after N wallets processed (overrides config)")
	noStore := flag.Bool("no-store", false, "skip SQLite persistence")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", true, "print full per-wallet table")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *budget > 0 {
		cfg.Runner.WalletBudget = *budget
	}
	setupLogger(cfg.Log)

	wallets, err := resolveWallets(*wallet, *input)
	if err != nil {
		slog.Error("failed to load wallets", "err", err)
		os.Exit(1)
	}

	slog.Info("mirrorsim starting",
		"config", *configPath,
		"wallets", len(wallets),
		"lookback", cfg.Sim.LookbackTrades,
		"slippage", cfg.Sim.Slippage,
		"workers", cfg.Runner.Workers,
	)

	client := polymarket.NewClient(cfg.API.DataBase, cfg.API.CLOBBase)
	oracle := polymarket.NewOracle(client)

	simulator, err := sim.New(sim.Config{
		Slippage:       cfg.Sim.Slippage,
		InitialCapital: cfg.Sim.InitialCapital,
	})
	if err != nil {
		slog.Error("invalid simulation config", "err", err)
		os.Exit(1)
	}
	resolver := sim.NewResolver(oracle, cfg.Sim.MinPositionValue)

	var store ports.ReportStore
	if !*noStore {
		sqlStore, err := storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	notifier := notify.NewConsole(*table)

	r := runner.New(
		runner.Config{
			Workers:           cfg.Runner.Workers,
			WalletBudget:      cfg.Runner.WalletBudget,
			LookbackTrades:    cfg.Sim.LookbackTrades,
			MaxDrawdownFlag:   cfg.Sim.MaxDrawdownFlag,
			SignificanceAlpha: cfg.Sim.SignificanceAlpha,
		},
		client,
		simulator,
		resolver,
		stats.Config{
			RiskFreeRate:  cfg.Sim.RiskFreeRate,
			MinSampleSize: cfg.Sim.MinSampleSize,
		},
		store,
		notifier,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := r.Run(ctx, wallets); err != nil {
		slog.Error("batch exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("mirrorsim stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
