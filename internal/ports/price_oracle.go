package ports

import (
	"context"
	"errors"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// ErrOracleUnavailable indica que el oracle agotó sus retries para un token.
// El resolver degrada la posición a "priceless" en vez de abortar el batch.
var ErrOracleUnavailable = errors.New("price oracle unavailable")

// PriceOracle valora un token: mejor precio de mercado actual, o el
// outcome ganador si el mercado ya resolvió.
type PriceOracle interface {
	TokenQuote(ctx context.Context, conditionID, tokenID string) (domain.Quote, error)
}
