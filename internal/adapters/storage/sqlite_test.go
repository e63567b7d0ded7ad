package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/mirrorsim/internal/adapters/storage"
	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

func makeReport(runID, wallet string, roi float64) domain.WalletReport {
	sharpe := 1.23
	pvalue := 0.042
	return domain.WalletReport{
		RunID:           runID,
		Wallet:          wallet,
		TradesSimulated: 42,
		DroppedRecords:  1,
		RealizedPnL:     20.5,
		UnrealizedPnL:   -3.2,
		TotalPnL:        17.3,
		ROIPercent:      roi,
		Metrics: domain.RiskMetrics{
			Sharpe:        &sharpe,
			Sortino:       nil, // indefinido: debe sobrevivir el round trip como NULL
			MaxDrawdown:   0.12,
			WinRate:       0.6,
			PValue:        &pvalue,
			SampleSize:    10,
			Sufficient:    true,
			KellyFraction: 0.2,
		},
		PricelessPositions:       1,
		StatisticallySignificant: true,
		GeneratedAt:              time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_SaveAndGetReports(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveReport(ctx, makeReport("run-1", "0xaaa", 24.0)))
	require.NoError(t, db.SaveReport(ctx, makeReport("run-1", "0xbbb", 12.5)))
	require.NoError(t, db.SaveReport(ctx, makeReport("run-2", "0xccc", 99.0)))

	reports, err := db.GetReports(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Ordenados por ROI desc
	assert.Equal(t, "0xaaa", reports[0].Wallet)
	assert.InDelta(t, 24.0, reports[0].ROIPercent, 0.001)

	got := reports[0]
	require.NotNil(t, got.Metrics.Sharpe)
	assert.InDelta(t, 1.23, *got.Metrics.Sharpe, 0.001)
	assert.Nil(t, got.Metrics.Sortino) // NULL, no un cero inventado
	require.NotNil(t, got.Metrics.PValue)
	assert.InDelta(t, 0.042, *got.Metrics.PValue, 0.0001)
	assert.True(t, got.Metrics.Sufficient)
	assert.True(t, got.StatisticallySignificant)
	assert.Equal(t, 1, got.PricelessPositions)
	assert.Equal(t, 42, got.TradesSimulated)
}

func TestSQLiteStore_UpsertSameWallet(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.SaveReport(ctx, makeReport("run-1", "0xaaa", 10.0)))

	updated := makeReport("run-1", "0xaaa", 33.0)
	require.NoError(t, db.SaveReport(ctx, updated))

	reports, err := db.GetReports(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.InDelta(t, 33.0, reports[0].ROIPercent, 0.001)
}

func TestSQLiteStore_FailedWalletReport(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	failed := domain.WalletReport{
		RunID:       "run-1",
		Wallet:      "0xbad",
		Error:       "fetch trades: upstream rate limited",
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, db.SaveReport(ctx, failed))

	reports, err := db.GetReports(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0].Error, "rate limited")
	assert.Nil(t, reports[0].Metrics.Sharpe)
}

func TestSQLiteStore_EmptyRun(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	reports, err := db.GetReports(context.Background(), "missing-run")
	require.NoError(t, err)
	assert.Empty(t, reports)
}
