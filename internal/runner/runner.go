package runner

// runner.go — worker pool para simular wallets en paralelo.
//
// Cada replay es una computación pura sobre su propia lista de trades, sin
// estado compartido entre wallets. El único recurso compartido es el client
// HTTP del oracle, cuyo token bucket hace de política de throttling global.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
	"github.com/alejandrodnm/mirrorsim/internal/ports"
	"github.com/alejandrodnm/mirrorsim/internal/sim"
	"github.com/alejandrodnm/mirrorsim/internal/stats"
)

// Config controla el paralelismo y los umbrales del batch.
type Config struct {
	Workers           int // goroutines del pool (0 = NumCPU)
	WalletBudget      int // corta el batch tras N wallets completados (0 = sin límite)
	LookbackTrades    int // trades recientes a analizar por wallet
	MaxDrawdownFlag   float64
	SignificanceAlpha float64
}

// Runner orquesta el batch: carga trades, replay, settlement y métricas
// por wallet, con fallos aislados — ningún wallet aborta el batch.
type Runner struct {
	cfg      Config
	trades   ports.TradeProvider
	sim      *sim.Simulator
	resolver *sim.Resolver
	stats    stats.Config
	store    ports.ReportStore // nil = no persistir
	notifier ports.Notifier    // nil = sin salida de consola
}

// New crea un Runner con todas las dependencias inyectadas.
func New(
	cfg Config,
	trades ports.TradeProvider,
	simulator *sim.Simulator,
	resolver *sim.Resolver,
	statsCfg stats.Config,
	store ports.ReportStore,
	notifier ports.Notifier,
) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Runner{
		cfg:      cfg,
		trades:   trades,
		sim:      simulator,
		resolver: resolver,
		stats:    statsCfg,
		store:    store,
		notifier: notifier,
	}
}

// Run simula todos los wallets y devuelve sus reports ordenados por ROI.
// Con WalletBudget > 0, los wallets encolados pero no empezados se saltan
// una vez alcanzado el presupuesto; los que están en vuelo terminan.
func (r *Runner) Run(ctx context.Context, wallets []string) ([]domain.WalletReport, error) {
	if len(wallets) == 0 {
		return nil, fmt.Errorf("runner.Run: no wallets to process")
	}

	runID := uuid.New().String()
	start := time.Now()

	slog.Info("batch starting",
		"run_id", runID,
		"wallets", len(wallets),
		"workers", r.cfg.Workers,
		"budget", r.cfg.WalletBudget,
	)

	workCh := make(chan string, len(wallets))
	resultCh := make(chan domain.WalletReport, len(wallets))

	var completed atomic.Int64

	// Worker pool: cada worker toma wallets de workCh y envía reports a resultCh.
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for wallet := range workCh {
				if ctx.Err() != nil {
					return
				}
				if r.cfg.WalletBudget > 0 && completed.Load() >= int64(r.cfg.WalletBudget) {
					slog.Debug("budget reached, skipping wallet", "wallet", shortAddr(wallet))
					continue
				}
				resultCh <- r.processWallet(ctx, runID, wallet)
				completed.Add(1)
			}
		}()
	}

	for _, w := range wallets {
		workCh <- w
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	reports := make([]domain.WalletReport, 0, len(wallets))
	for report := range resultCh {
		reports = append(reports, report)

		// Persistencia incremental: un batch interrumpido conserva lo hecho.
		if r.store != nil {
			if err := r.store.SaveReport(ctx, report); err != nil {
				slog.Warn("storage error", "wallet", shortAddr(report.Wallet), "err", err)
			}
		}

		slog.Info("wallet processed",
			"progress", fmt.Sprintf("%d/%d", len(reports), len(wallets)),
			"wallet", shortAddr(report.Wallet),
			"trades", report.TradesSimulated,
			"pnl", fmt.Sprintf("%.2f", report.TotalPnL),
			"failed", report.Error != "",
		)
	}

	// Mejores primero: ROI desc, fallos al final.
	sort.SliceStable(reports, func(i, j int) bool {
		if (reports[i].Error == "") != (reports[j].Error == "") {
			return reports[i].Error == ""
		}
		return reports[i].ROIPercent > reports[j].ROIPercent
	})

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, reports); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	slog.Info("batch complete",
		"run_id", runID,
		"processed", len(reports),
		"skipped", len(wallets)-len(reports),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return reports, nil
}

// processWallet corre el pipeline completo de un wallet. Cualquier fallo se
// encapsula en el report — el batch nunca se entera.
func (r *Runner) processWallet(ctx context.Context, runID, wallet string) domain.WalletReport {
	report := domain.WalletReport{
		RunID:       runID,
		Wallet:      wallet,
		GeneratedAt: time.Now().UTC(),
	}

	// Over-fetch 2×: las ventas necesitan encontrar su entrada en ventana.
	trades, dropped, err := r.trades.FetchWalletTrades(ctx, wallet, r.cfg.LookbackTrades*2)
	if err != nil {
		report.Error = fmt.Sprintf("fetch trades: %v", err)
		return report
	}
	if len(trades) == 0 {
		report.Error = "no trades found"
		report.DroppedRecords = dropped
		return report
	}

	result, portfolio := r.sim.Replay(wallet, trades)
	result.DroppedRecords += dropped

	r.resolver.Settle(ctx, result, portfolio)

	metrics := stats.Compute(r.stats, result)
	return r.assemble(report, result, metrics)
}

// assemble rellena el report final a partir del resultado y las métricas.
func (r *Runner) assemble(report domain.WalletReport, result *domain.SimulationResult, metrics domain.RiskMetrics) domain.WalletReport {
	report.TradesSimulated = result.TradesSimulated
	report.DroppedRecords = result.DroppedRecords
	report.RealizedPnL = result.RealizedPnL
	report.UnrealizedPnL = result.UnrealizedPnL
	report.TotalPnL = result.RealizedPnL + result.UnrealizedPnL
	report.PricelessPositions = result.PricelessPositions
	report.Metrics = metrics

	if committed := result.CapitalCommitted(); committed > 0 {
		report.ROIPercent = report.TotalPnL / committed * 100
	}

	report.HighDrawdownRisk = metrics.MaxDrawdown > r.cfg.MaxDrawdownFlag
	report.StatisticallySignificant = metrics.PValue != nil && *metrics.PValue < r.cfg.SignificanceAlpha

	return report
}

func shortAddr(wallet string) string {
	if len(wallet) <= 10 {
		return wallet
	}
	return wallet[:10] + "..."
}
