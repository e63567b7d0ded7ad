package storage

// sqlite.go — persistencia de reports por wallet.
//
// Una fila por (run_id, wallet) con UPSERT: reintentar un wallet dentro del
// mismo run sobreescribe su report. Las métricas indefinidas (Sharpe,
// Sortino, p-value) se guardan como NULL, nunca como un cero inventado.
// Prune automático al arrancar: runs con más de 90 días se eliminan.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
    run_id          TEXT    NOT NULL,
    wallet          TEXT    NOT NULL,
    trades_sim      INTEGER NOT NULL DEFAULT 0,
    dropped         INTEGER NOT NULL DEFAULT 0,
    realized_pnl    REAL    NOT NULL DEFAULT 0,
    unrealized_pnl  REAL    NOT NULL DEFAULT 0,
    total_pnl       REAL    NOT NULL DEFAULT 0,
    roi_percent     REAL    NOT NULL DEFAULT 0,
    sharpe          REAL,
    sortino         REAL,
    max_drawdown    REAL    NOT NULL DEFAULT 0,
    win_rate        REAL    NOT NULL DEFAULT 0,
    t_stat          REAL,
    p_value         REAL,
    sample_size     INTEGER NOT NULL DEFAULT 0,
    sufficient      INTEGER NOT NULL DEFAULT 0,
    kelly_fraction  REAL    NOT NULL DEFAULT 0,
    priceless       INTEGER NOT NULL DEFAULT 0,
    high_drawdown   INTEGER NOT NULL DEFAULT 0,
    significant     INTEGER NOT NULL DEFAULT 0,
    error           TEXT    NOT NULL DEFAULT '',
    generated_at    DATETIME NOT NULL,
    PRIMARY KEY (run_id, wallet)
);

CREATE INDEX IF NOT EXISTS idx_reports_run ON reports(run_id);
CREATE INDEX IF NOT EXISTS idx_reports_at  ON reports(generated_at DESC);
`

const retentionReports = 90 * 24 * time.Hour

// SQLiteStore implementa ports.ReportStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia runs antiguos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveReport hace upsert del report de un wallet dentro de su run.
func (s *SQLiteStore) SaveReport(ctx context.Context, r domain.WalletReport) error {
	m := r.Metrics
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports
			(run_id, wallet, trades_sim, dropped, realized_pnl, unrealized_pnl,
			 total_pnl, roi_percent, sharpe, sortino, max_drawdown, win_rate,
			 t_stat, p_value, sample_size, sufficient, kelly_fraction,
			 priceless, high_drawdown, significant, error, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, wallet) DO UPDATE SET
			trades_sim     = excluded.trades_sim,
			dropped        = excluded.dropped,
			realized_pnl   = excluded.realized_pnl,
			unrealized_pnl = excluded.unrealized_pnl,
			total_pnl      = excluded.total_pnl,
			roi_percent    = excluded.roi_percent,
			sharpe         = excluded.sharpe,
			sortino        = excluded.sortino,
			max_drawdown   = excluded.max_drawdown,
			win_rate       = excluded.win_rate,
			t_stat         = excluded.t_stat,
			p_value        = excluded.p_value,
			sample_size    = excluded.sample_size,
			sufficient     = excluded.sufficient,
			kelly_fraction = excluded.kelly_fraction,
			priceless      = excluded.priceless,
			high_drawdown  = excluded.high_drawdown,
			significant    = excluded.significant,
			error          = excluded.error,
			generated_at   = excluded.generated_at
	`,
		r.RunID, r.Wallet, r.TradesSimulated, r.DroppedRecords,
		r.RealizedPnL, r.UnrealizedPnL, r.TotalPnL, r.ROIPercent,
		m.Sharpe, m.Sortino, m.MaxDrawdown, m.WinRate,
		m.TStat, m.PValue, m.SampleSize, boolInt(m.Sufficient), m.KellyFraction,
		r.PricelessPositions, boolInt(r.HighDrawdownRisk), boolInt(r.StatisticallySignificant),
		r.Error, r.GeneratedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: upsert %s: %w", r.Wallet, err)
	}
	return nil
}

// GetReports devuelve los reports de un run, ordenados por ROI desc.
func (s *SQLiteStore) GetReports(ctx context.Context, runID string) ([]domain.WalletReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, wallet, trades_sim, dropped, realized_pnl, unrealized_pnl,
		       total_pnl, roi_percent, sharpe, sortino, max_drawdown, win_rate,
		       t_stat, p_value, sample_size, sufficient, kelly_fraction,
		       priceless, high_drawdown, significant, error, generated_at
		FROM reports
		WHERE run_id = ?
		ORDER BY roi_percent DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.GetReports: query: %w", err)
	}
	defer rows.Close()

	var reports []domain.WalletReport
	for rows.Next() {
		var r domain.WalletReport
		var sharpe, sortino, tstat, pvalue sql.NullFloat64
		var sufficient, highDD, significant int
		var generatedAt string

		if err := rows.Scan(
			&r.RunID, &r.Wallet, &r.TradesSimulated, &r.DroppedRecords,
			&r.RealizedPnL, &r.UnrealizedPnL, &r.TotalPnL, &r.ROIPercent,
			&sharpe, &sortino, &r.Metrics.MaxDrawdown, &r.Metrics.WinRate,
			&tstat, &pvalue, &r.Metrics.SampleSize, &sufficient, &r.Metrics.KellyFraction,
			&r.PricelessPositions, &highDD, &significant,
			&r.Error, &generatedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.GetReports: scan row: %w", err)
		}

		r.Metrics.Sharpe = nullableFloat(sharpe)
		r.Metrics.Sortino = nullableFloat(sortino)
		r.Metrics.TStat = nullableFloat(tstat)
		r.Metrics.PValue = nullableFloat(pvalue)
		r.Metrics.Sufficient = sufficient == 1
		r.HighDrawdownRisk = highDD == 1
		r.StatisticallySignificant = significant == 1
		r.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// pruneOld elimina reports antiguos para mantener la DB ligera.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionReports)
	s.db.ExecContext(ctx, `DELETE FROM reports WHERE generated_at < ?`, cutoff)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
