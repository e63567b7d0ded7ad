package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
	"github.com/alejandrodnm/mirrorsim/internal/ports"
)

// fakeOracle devuelve quotes fijadas por token, o un error si no conoce el token.
type fakeOracle struct {
	quotes map[string]domain.Quote
	calls  int
}

func (f *fakeOracle) TokenQuote(_ context.Context, _, tokenID string) (domain.Quote, error) {
	f.calls++
	q, ok := f.quotes[tokenID]
	if !ok {
		return domain.Quote{}, ports.ErrOracleUnavailable
	}
	return q, nil
}

func replayOpenPosition(t *testing.T, price, size float64) (*domain.SimulationResult, domain.Portfolio) {
	t.Helper()
	s := newTestSimulator(t, 0)
	return s.Replay("0xwallet", []domain.TradeRecord{
		makeTrade(0, domain.DirectionBuy, price, size),
	})
}

func TestResolver_SettlesWinnerAtOne(t *testing.T) {
	res, portfolio := replayOpenPosition(t, 0.40, 100)
	oracle := &fakeOracle{quotes: map[string]domain.Quote{
		"tok-1": {Resolved: true, Winner: true},
	}}

	NewResolver(oracle, 1.0).Settle(context.Background(), res, portfolio)

	assert.InDelta(t, 60.0, res.RealizedPnL, 1e-9) // (1.0 - 0.40) × 100
	assert.Zero(t, res.UnrealizedPnL)
	require.Len(t, res.Realized, 1)
	assert.Equal(t, domain.RealizedSettlement, res.Realized[0].Kind)
	assert.InDelta(t, 1.0, res.Realized[0].ExitPrice, 1e-9)
	assert.False(t, portfolio["tok-1"].Open())

	// Curva final: 1000 - 40 (compra) + 100 (settlement) = 1060
	assert.InDelta(t, 1060.0, res.Curve.Final(), 1e-9)
}

func TestResolver_SettlesLoserAtZero(t *testing.T) {
	res, portfolio := replayOpenPosition(t, 0.40, 100)
	oracle := &fakeOracle{quotes: map[string]domain.Quote{
		"tok-1": {Resolved: true, Winner: false},
	}}

	NewResolver(oracle, 1.0).Settle(context.Background(), res, portfolio)

	assert.InDelta(t, -40.0, res.RealizedPnL, 1e-9)
	assert.InDelta(t, 960.0, res.Curve.Final(), 1e-9)
}

func TestResolver_OpenMarketMarksUnrealized(t *testing.T) {
	res, portfolio := replayOpenPosition(t, 0.40, 100)
	oracle := &fakeOracle{quotes: map[string]domain.Quote{
		"tok-1": {Price: 0.55, Resolved: false},
	}}

	NewResolver(oracle, 1.0).Settle(context.Background(), res, portfolio)

	assert.Zero(t, res.RealizedPnL)
	assert.InDelta(t, 15.0, res.UnrealizedPnL, 1e-9) // (0.55 - 0.40) × 100
	require.Len(t, res.OpenMarks, 1)
	assert.InDelta(t, 0.55, res.OpenMarks[0].MarkPrice, 1e-9)

	// La posición sigue abierta: no es un evento realizado.
	assert.Empty(t, res.Realized)
	assert.True(t, portfolio["tok-1"].Open())
	assert.InDelta(t, 1015.0, res.Curve.Final(), 1e-9)
}

func TestResolver_OracleFailure_MarksPriceless(t *testing.T) {
	res, portfolio := replayOpenPosition(t, 0.40, 100)
	oracle := &fakeOracle{quotes: map[string]domain.Quote{}} // siempre falla

	NewResolver(oracle, 1.0).Settle(context.Background(), res, portfolio)

	assert.Equal(t, 1, res.PricelessPositions)
	// Excluida de los totales, no asumida a cero.
	assert.Zero(t, res.RealizedPnL)
	assert.Zero(t, res.UnrealizedPnL)
	assert.Empty(t, res.OpenMarks)
	// La curva final solo refleja la caja: 1000 - 40.
	assert.InDelta(t, 960.0, res.Curve.Final(), 1e-9)
}

func TestResolver_SkipsDustPositions(t *testing.T) {
	// Cost basis 0.40 < umbral 1.0 → ni se consulta el oracle.
	res, portfolio := replayOpenPosition(t, 0.40, 1)
	oracle := &fakeOracle{quotes: map[string]domain.Quote{}}

	NewResolver(oracle, 1.0).Settle(context.Background(), res, portfolio)

	assert.Zero(t, oracle.calls)
	assert.Zero(t, res.PricelessPositions)
}

func TestResolver_ClosedPositionsIgnored(t *testing.T) {
	s := newTestSimulator(t, 0)
	res, portfolio := s.Replay("0xwallet", []domain.TradeRecord{
		makeTrade(0, domain.DirectionBuy, 0.40, 100),
		makeTrade(1, domain.DirectionSell, 0.60, 100),
	})
	oracle := &fakeOracle{quotes: map[string]domain.Quote{}}

	NewResolver(oracle, 1.0).Settle(context.Background(), res, portfolio)

	assert.Zero(t, oracle.calls)
	assert.InDelta(t, 1020.0, res.Curve.Final(), 1e-9)
}
