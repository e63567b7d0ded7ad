package polymarket

// oracle.go — price oracle sobre CLOB /markets/{conditionID}.
//
// El endpoint devuelve el mercado completo (tokens, precios, winner flags),
// así que una sola llamada cubre los dos lados. La respuesta se cachea por
// conditionID: durante settlement el mismo mercado se consulta para varias
// posiciones y wallets.

import (
	"context"
	"fmt"
	"sync"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
	"github.com/alejandrodnm/mirrorsim/internal/ports"
)

// Oracle implementa ports.PriceOracle contra el CLOB, compartiendo el rate
// limiter del Client entre todos los workers del batch.
type Oracle struct {
	client *Client

	mu    sync.Mutex
	cache map[string]rawMarket // conditionID → market
}

// NewOracle crea un Oracle sobre el client dado.
func NewOracle(client *Client) *Oracle {
	return &Oracle{
		client: client,
		cache:  make(map[string]rawMarket),
	}
}

// TokenQuote devuelve la valoración actual del token. Si el mercado ya
// resolvió, Resolved=true y Winner indica si este token redime a $1.
// Tras agotar los retries del client devuelve ports.ErrOracleUnavailable.
func (o *Oracle) TokenQuote(ctx context.Context, conditionID, tokenID string) (domain.Quote, error) {
	market, err := o.market(ctx, conditionID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: market %s: %v", ports.ErrOracleUnavailable, shortID(conditionID), err)
	}

	for _, tok := range market.Tokens {
		if tok.TokenID != tokenID {
			continue
		}
		price, _ := tok.Price.Float64()
		return domain.Quote{
			Price:    price,
			Resolved: market.Closed,
			Winner:   tok.Winner,
		}, nil
	}

	return domain.Quote{}, fmt.Errorf("%w: token %s not in market %s",
		ports.ErrOracleUnavailable, shortID(tokenID), shortID(conditionID))
}

func (o *Oracle) market(ctx context.Context, conditionID string) (rawMarket, error) {
	o.mu.Lock()
	if m, ok := o.cache[conditionID]; ok {
		o.mu.Unlock()
		return m, nil
	}
	o.mu.Unlock()

	url := fmt.Sprintf("%s/markets/%s", o.client.clobBase, conditionID)
	var m rawMarket
	if err := o.client.get(ctx, o.client.clobLimiter, url, &m); err != nil {
		return rawMarket{}, err
	}

	o.mu.Lock()
	o.cache[conditionID] = m
	o.mu.Unlock()
	return m, nil
}
