package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKelly_KnownValue(t *testing.T) {
	// p=0.6, b=1.0 → f* = (1×0.6 − 0.4)/1 = 0.2
	returns := []float64{0.1, 0.1, 0.1, -0.1, -0.1}
	assert.InDelta(t, 0.2, Kelly(returns), 1e-9)
}

func TestKelly_NoEdge_ClampsToZero(t *testing.T) {
	// p=0.5 pero las pérdidas cuadruplican las ganancias → f* negativo → 0
	returns := []float64{0.05, -0.2, 0.05, -0.2}
	assert.Zero(t, Kelly(returns))
}

func TestKelly_AllWins(t *testing.T) {
	assert.Equal(t, 1.0, Kelly([]float64{0.1, 0.2, 0.3}))
}

func TestKelly_AllLosses(t *testing.T) {
	assert.Zero(t, Kelly([]float64{-0.1, -0.2}))
}

func TestKelly_Empty(t *testing.T) {
	assert.Zero(t, Kelly(nil))
}

func TestKelly_BreakEvenTradesExcluded(t *testing.T) {
	// Los retornos exactamente cero no cuentan ni como win ni como loss,
	// pero sí diluyen el win rate del numerador.
	withZeros := Kelly([]float64{0.1, 0.1, 0, 0, -0.1})
	without := Kelly([]float64{0.1, 0.1, -0.1})
	assert.Less(t, withZeros, without)
}
