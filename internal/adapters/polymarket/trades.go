package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

const (
	tradesPerPage  = 500
	tradesMaxPages = 4
)

// FetchWalletTrades obtiene los trades recientes de un wallet usando la
// Data API pública, paginando hasta limit records. Devuelve los trades en
// orden cronológico ascendente, listos para el replay, y el número de
// records malformados descartados.
func (c *Client) FetchWalletTrades(ctx context.Context, wallet string, limit int) ([]domain.TradeRecord, int, error) {
	var all []domain.TradeRecord
	var dropped int

	for page := 0; page < tradesMaxPages && len(all) < limit; page++ {
		offset := page * tradesPerPage
		pageLimit := min(tradesPerPage, limit-len(all))
		url := fmt.Sprintf("%s/trades?user=%s&limit=%d&offset=%d",
			c.dataBase, wallet, pageLimit, offset)

		var resp []rawTrade
		if err := c.get(ctx, c.dataLimiter, url, &resp); err != nil {
			return nil, dropped, fmt.Errorf("data-api.FetchWalletTrades: %w", err)
		}

		if len(resp) == 0 {
			break
		}

		records, pageDropped := mapRawTrades(wallet, resp)
		all = append(all, records...)
		dropped += pageDropped

		slog.Debug("fetched wallet trades page",
			"wallet", shortID(wallet),
			"page", page,
			"count", len(resp),
			"dropped", pageDropped,
			"total", len(all),
		)

		if len(resp) < pageLimit {
			break
		}
	}

	// La API devuelve newest-first; el replay necesita oldest-first.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})

	return all, dropped, nil
}
