package stats

import (
	"math"

	"github.com/alejandrodnm/mirrorsim/internal/domain"
)

// Config son los parámetros de cálculo de métricas, pasados explícitamente.
type Config struct {
	RiskFreeRate  float64
	MinSampleSize int // mínimo de trades cerrados para reportar Sharpe/Sortino/p-value
}

// Compute reduce la serie de retornos realizados y la curva de equity a las
// métricas de riesgo del wallet. Las métricas sin datos suficientes quedan
// en nil — indefinido, nunca un número inventado.
func Compute(cfg Config, result *domain.SimulationResult) domain.RiskMetrics {
	returns := result.Returns()

	m := domain.RiskMetrics{
		MaxDrawdown: result.Curve.MaxDrawdown(),
		WinRate:     winRate(result.Realized),
		SampleSize:  len(returns),
		Sufficient:  len(returns) >= cfg.MinSampleSize,
	}

	m.Sharpe = sharpe(returns, cfg.RiskFreeRate, cfg.MinSampleSize)
	m.Sortino = sortino(returns, cfg.RiskFreeRate, cfg.MinSampleSize)

	tt := OneSidedTTest(returns, cfg.MinSampleSize)
	m.DF = tt.DF
	if tt.Sufficient {
		t, p := tt.TStat, tt.PValue
		m.TStat, m.PValue = &t, &p
	}

	m.KellyFraction = Kelly(returns)
	return m
}

// winRate = trades cerrados con PnL > 0 / trades cerrados.
func winRate(realized []domain.RealizedTrade) float64 {
	if len(realized) == 0 {
		return 0
	}
	wins := 0
	for _, rt := range realized {
		if rt.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(realized))
}

// sharpe = mean(return − rf) / sample stdev. Indefinido (nil) con muestra
// insuficiente o stdev cero.
func sharpe(returns []float64, riskFree float64, minSample int) *float64 {
	if len(returns) < minSample || len(returns) < 2 {
		return nil
	}
	mean := meanOf(returns)
	sd := sampleStdev(returns, mean)
	if sd == 0 {
		return nil
	}
	s := (mean - riskFree) / sd
	return &s
}

// sortino usa solo la desviación de los retornos por debajo del umbral.
// Sin observaciones a la baja no hay denominador: indefinido, no infinito.
func sortino(returns []float64, riskFree float64, minSample int) *float64 {
	if len(returns) < minSample || len(returns) < 2 {
		return nil
	}
	var downside []float64
	for _, r := range returns {
		if r < riskFree {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return nil
	}
	dd := sampleStdev(downside, meanOf(downside))
	if dd == 0 {
		return nil
	}
	s := (meanOf(returns) - riskFree) / dd
	return &s
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev es la desviación típica muestral (n−1), consistente con el t-test.
func sampleStdev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
