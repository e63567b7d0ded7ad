package ports

import (
	"context"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// Notifier presenta los resultados del batch al usuario.
type Notifier interface {
	// Notify muestra los reports ordenados por ROI.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, reports []domain.WalletReport) error
}
