package stats

// Kelly devuelve la fracción de capital recomendada f* = (b·p − q)/b, con
// p = win rate observado, b = tamaño medio de win / tamaño medio de loss,
// q = 1 − p. Siempre en [0,1]: sin edge (f* negativo o b indefinido) se
// reporta 0, nunca una posición negativa.
func Kelly(returns []float64) float64 {
	var wins, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			wins = append(wins, r)
		case r < 0:
			losses = append(losses, r)
		}
	}

	switch {
	case len(wins) == 0:
		return 0 // no edge
	case len(losses) == 0:
		return 1 // solo wins en la muestra: full Kelly
	}

	p := float64(len(wins)) / float64(len(returns))
	avgWin := meanOf(wins)
	avgLoss := -meanOf(losses)
	if avgLoss <= 0 {
		return clamp01(p)
	}

	b := avgWin / avgLoss
	f := (b*p - (1 - p)) / b
	return clamp01(f)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
