package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
	"github.com/alejandrodnm/mirrorsim/internal/ports"
	"github.com/alejandrodnm/mirrorsim/internal/sim"
	"github.com/alejandrodnm/mirrorsim/internal/stats"
)

var testBase = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// fakeTrades sirve trades canned por wallet; los wallets listados en fail
// devuelven error de fetch.
type fakeTrades struct {
	trades map[string][]domain.TradeRecord
	fail   map[string]bool
}

func (f *fakeTrades) FetchWalletTrades(_ context.Context, wallet string, _ int) ([]domain.TradeRecord, int, error) {
	if f.fail[wallet] {
		return nil, 0, fmt.Errorf("upstream rate limited")
	}
	return f.trades[wallet], 0, nil
}

type fakeOracle struct{}

func (fakeOracle) TokenQuote(context.Context, string, string) (domain.Quote, error) {
	return domain.Quote{}, ports.ErrOracleUnavailable
}

func roundTrip(wallet string, buyPrice, sellPrice float64) []domain.TradeRecord {
	mk := func(seq int, dir domain.Direction, price float64) domain.TradeRecord {
		return domain.TradeRecord{
			EventID:     fmt.Sprintf("%s-%d", wallet, seq),
			Wallet:      wallet,
			TokenID:     "tok-" + wallet,
			ConditionID: "0xcond",
			Outcome:     "Yes",
			Direction:   dir,
			Price:       price,
			Size:        100,
			Timestamp:   testBase.Add(time.Duration(seq) * time.Minute),
		}
	}
	return []domain.TradeRecord{
		mk(0, domain.DirectionBuy, buyPrice),
		mk(1, domain.DirectionSell, sellPrice),
	}
}

func newTestRunner(t *testing.T, cfg Config, trades ports.TradeProvider) *Runner {
	t.Helper()
	simulator, err := sim.New(sim.Config{Slippage: 0, InitialCapital: 1000})
	require.NoError(t, err)
	resolver := sim.NewResolver(fakeOracle{}, 1.0)
	return New(cfg, trades, simulator, resolver, stats.Config{MinSampleSize: 5}, nil, nil)
}

func TestRunner_ProcessesAllWallets(t *testing.T) {
	provider := &fakeTrades{trades: map[string][]domain.TradeRecord{
		"0xaaa": roundTrip("0xaaa", 0.40, 0.60),
		"0xbbb": roundTrip("0xbbb", 0.50, 0.45),
	}}
	r := newTestRunner(t, Config{Workers: 4, LookbackTrades: 10}, provider)

	reports, err := r.Run(context.Background(), []string{"0xaaa", "0xbbb"})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Ordenados por ROI desc: el wallet ganador primero.
	assert.Equal(t, "0xaaa", reports[0].Wallet)
	assert.InDelta(t, 20.0, reports[0].RealizedPnL, 1e-9)
	assert.InDelta(t, 50.0, reports[0].ROIPercent, 1e-9) // 20 sobre 40 invertidos
	assert.InDelta(t, -5.0, reports[1].RealizedPnL, 1e-9)
}

func TestRunner_WalletFailureIsIsolated(t *testing.T) {
	provider := &fakeTrades{
		trades: map[string][]domain.TradeRecord{
			"0xaaa": roundTrip("0xaaa", 0.40, 0.60),
		},
		fail: map[string]bool{"0xbad": true},
	}
	r := newTestRunner(t, Config{Workers: 2, LookbackTrades: 10}, provider)

	reports, err := r.Run(context.Background(), []string{"0xbad", "0xaaa"})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// El fallo va al final y no contamina el resto del batch.
	assert.Empty(t, reports[0].Error)
	assert.Contains(t, reports[1].Error, "fetch trades")
	assert.Equal(t, "0xbad", reports[1].Wallet)
}

func TestRunner_EmptyWalletReportsError(t *testing.T) {
	provider := &fakeTrades{trades: map[string][]domain.TradeRecord{}}
	r := newTestRunner(t, Config{Workers: 1, LookbackTrades: 10}, provider)

	reports, err := r.Run(context.Background(), []string{"0xempty"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "no trades found", reports[0].Error)
	assert.False(t, reports[0].Valid())
}

func TestRunner_WalletBudgetSkipsRemaining(t *testing.T) {
	trades := make(map[string][]domain.TradeRecord)
	wallets := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		w := fmt.Sprintf("0x%03d", i)
		trades[w] = roundTrip(w, 0.40, 0.60)
		wallets = append(wallets, w)
	}
	provider := &fakeTrades{trades: trades}

	// Un solo worker para que el presupuesto sea determinista.
	r := newTestRunner(t, Config{Workers: 1, WalletBudget: 2, LookbackTrades: 10}, provider)

	reports, err := r.Run(context.Background(), wallets)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestRunner_NoWallets(t *testing.T) {
	r := newTestRunner(t, Config{Workers: 1, LookbackTrades: 10}, &fakeTrades{})
	_, err := r.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunner_PricelessPositionsReachReport(t *testing.T) {
	// Posición abierta sin sell: el oracle fake siempre falla → priceless.
	open := roundTrip("0xopen", 0.40, 0.60)[:1]
	provider := &fakeTrades{trades: map[string][]domain.TradeRecord{"0xopen": open}}
	r := newTestRunner(t, Config{Workers: 1, LookbackTrades: 10}, provider)

	reports, err := r.Run(context.Background(), []string{"0xopen"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].PricelessPositions)
	assert.Zero(t, reports[0].UnrealizedPnL)
}
