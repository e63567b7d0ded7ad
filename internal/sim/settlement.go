package sim

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
	"github.com/alejandrodnm/mirrorsim/internal/ports"
)

// Resolver marks every position still open at the end of the replay window:
// resolved markets settle to 1/0 (realized), open markets are valued at the
// oracle's current mark (unrealized). Oracle failures degrade the position
// to "priceless" instead of stalling the wallet.
type Resolver struct {
	oracle ports.PriceOracle

	// minPositionValue filters dust: open positions whose cost basis is
	// below it are ignored entirely, not marked priceless.
	minPositionValue float64
}

// NewResolver builds a Resolver over the given oracle.
func NewResolver(oracle ports.PriceOracle, minPositionValue float64) *Resolver {
	return &Resolver{oracle: oracle, minPositionValue: minPositionValue}
}

// Settle values every open position in the portfolio and appends the final
// equity sample to the result's curve. Mutates res in place.
func (r *Resolver) Settle(ctx context.Context, res *domain.SimulationResult, portfolio domain.Portfolio) {
	asOf := res.LastEventAt
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	// Final equity: cash plus whatever the open inventory settles/marks to.
	finalEquity := res.InitialCapital + res.Cash

	for _, pos := range portfolio {
		if !pos.Open() {
			continue
		}
		if pos.CostBasis < r.minPositionValue {
			slog.Debug("settle: skipping dust position",
				"wallet", shortAddr(res.Wallet),
				"token", shortAddr(pos.TokenID),
				"cost_basis", pos.CostBasis,
			)
			continue
		}

		quote, err := r.oracle.TokenQuote(ctx, pos.ConditionID, pos.TokenID)
		if err != nil {
			res.PricelessPositions++
			if errors.Is(err, ports.ErrOracleUnavailable) {
				slog.Warn("settle: position left priceless",
					"wallet", shortAddr(res.Wallet),
					"token", shortAddr(pos.TokenID),
					"qty", pos.Quantity,
				)
			} else {
				slog.Warn("settle: oracle error", "wallet", shortAddr(res.Wallet), "err", err)
			}
			continue
		}

		value := quote.SettlementValue()

		if quote.Resolved {
			// Binary settlement is a realized event: the winning side
			// redeems at $1, the losing side expires worthless.
			qty := pos.Quantity
			entry := pos.AvgEntry
			sold, pnl := pos.Sell(qty, value)
			res.Cash += value * sold
			res.RealizedPnL += pnl
			res.Realized = append(res.Realized, domain.RealizedTrade{
				TokenID:    pos.TokenID,
				Kind:       domain.RealizedSettlement,
				Quantity:   sold,
				EntryPrice: entry,
				ExitPrice:  value,
				PnL:        pnl,
				Return:     tradeReturn(value, entry),
				Timestamp:  asOf,
			})
			finalEquity += value * sold
		} else {
			pnl := (value - pos.AvgEntry) * pos.Quantity
			res.UnrealizedPnL += pnl
			res.OpenMarks = append(res.OpenMarks, domain.OpenMark{
				TokenID:    pos.TokenID,
				Quantity:   pos.Quantity,
				EntryPrice: pos.AvgEntry,
				MarkPrice:  value,
				PnL:        pnl,
			})
			finalEquity += value * pos.Quantity
		}
	}

	res.Curve = append(res.Curve, domain.EquitySample{Timestamp: asOf, Value: finalEquity})
}
