package ports

import (
	"context"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// ReportStore persiste los reports por wallet de cada run.
// El runner guarda incrementalmente: un batch interrumpido conserva
// los wallets ya completados.
type ReportStore interface {
	SaveReport(ctx context.Context, report domain.WalletReport) error
	GetReports(ctx context.Context, runID string) ([]domain.WalletReport, error)
	Close() error
}
