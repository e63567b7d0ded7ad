package sim

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// Config controls how a follower replay is priced. Passed explicitly at
// construction so parallel wallet runs never share hidden state.
type Config struct {
	// Slippage is the fraction applied symmetrically: buys fill at
	// p×(1+slippage), sells at p×(1−slippage). The follower always gets
	// a slightly worse price than the target wallet.
	Slippage float64

	// InitialCapital is the equity-curve base. Drawdown is a fraction of
	// the running peak, so the base must be positive.
	InitialCapital float64
}

// Simulator replays a wallet's trade stream against a virtual portfolio.
// Pure computation: one instance is safe to share across workers.
type Simulator struct {
	cfg Config
}

// New validates the config and builds a Simulator.
// Out-of-domain config is the only fatal condition — it is rejected
// before any simulation starts.
func New(cfg Config) (*Simulator, error) {
	if cfg.Slippage < 0 || cfg.Slippage >= 1 {
		return nil, fmt.Errorf("sim.New: slippage %.4f outside [0,1)", cfg.Slippage)
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("sim.New: initial capital %.2f must be > 0", cfg.InitialCapital)
	}
	return &Simulator{cfg: cfg}, nil
}

// Replay reproduces the wallet's trades strictly by timestamp and returns
// the simulation result plus the portfolio with whatever is still open.
// Malformed records are dropped and counted, never silently processed.
func (s *Simulator) Replay(wallet string, trades []domain.TradeRecord) (*domain.SimulationResult, domain.Portfolio) {
	ordered := make([]domain.TradeRecord, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	res := &domain.SimulationResult{
		Wallet:         wallet,
		InitialCapital: s.cfg.InitialCapital,
	}
	portfolio := make(domain.Portfolio)

	for _, t := range ordered {
		if err := t.Validate(); err != nil {
			res.DroppedRecords++
			slog.Debug("sim: dropped record", "wallet", shortAddr(wallet), "err", err)
			continue
		}

		pos := portfolio.Get(t)

		switch t.Direction {
		case domain.DirectionBuy:
			entry := t.Price * (1 + s.cfg.Slippage)
			pos.Buy(t.Size, entry)
			res.Cash -= entry * t.Size

		case domain.DirectionSell:
			if !pos.Open() {
				// The entry happened before our lookback window. Skipping
				// avoids booking a phantom 100%-profit trade.
				continue
			}
			exit := t.Price * (1 - s.cfg.Slippage)
			entry := pos.AvgEntry
			sold, pnl := pos.Sell(t.Size, exit)
			res.Cash += exit * sold
			res.RealizedPnL += pnl
			res.Realized = append(res.Realized, domain.RealizedTrade{
				TokenID:    t.TokenID,
				Kind:       domain.RealizedSell,
				Quantity:   sold,
				EntryPrice: entry,
				ExitPrice:  exit,
				PnL:        pnl,
				Return:     tradeReturn(exit, entry),
				Timestamp:  t.Timestamp,
			})
		}

		pos.LastMark = t.Price
		res.TradesSimulated++
		res.LastEventAt = t.Timestamp
		res.Curve = append(res.Curve, domain.EquitySample{
			Timestamp: t.Timestamp,
			Value:     s.cfg.InitialCapital + res.Cash + portfolio.OpenValue(),
		})
	}

	return res, portfolio
}

// tradeReturn normalizes a lot's PnL by the capital committed to it.
func tradeReturn(exit, entry float64) float64 {
	if entry <= 0 {
		return 0
	}
	return (exit - entry) / entry
}

func shortAddr(wallet string) string {
	if len(wallet) <= 10 {
		return wallet
	}
	return wallet[:10] + "..."
}
