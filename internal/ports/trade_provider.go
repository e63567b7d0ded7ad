package ports

import (
	"context"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// TradeProvider carga el historial de trades de un wallet objetivo.
type TradeProvider interface {
	// FetchWalletTrades devuelve hasta limit trades del wallet en orden
	// cronológico ascendente, junto al número de records malformados
	// descartados en la frontera de validación.
	FetchWalletTrades(ctx context.Context, wallet string, limit int) ([]domain.TradeRecord, int, error)
}
