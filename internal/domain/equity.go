package domain

import "time"

// EquitySample es un punto (timestamp, valor de cartera) de la curva de equity.
type EquitySample struct {
	Timestamp time.Time
	Value     float64
}

// EquityCurve es la secuencia ordenada de samples: uno por trade aceptado
// más uno final tras el settlement.
type EquityCurve []EquitySample

// MaxDrawdown devuelve la máxima caída pico-a-valle como fracción del pico.
// Siempre >= 0; 0 para una curva monótonamente no decreciente.
// Los picos no positivos se ignoran (la fracción no estaría definida).
func (c EquityCurve) MaxDrawdown() float64 {
	var peak, maxDD float64
	for _, s := range c {
		if s.Value > peak {
			peak = s.Value
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - s.Value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Final devuelve el último valor de la curva, o 0 si está vacía.
func (c EquityCurve) Final() float64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].Value
}
