package stats

// ttest.go — one-sample t-test contra media nula <= 0.
//
// La hipótesis declarada es mean > 0, así que el test es de una cola:
// p = P(T > t) con df = n−1. La CDF de Student-t se deriva a mano vía la
// beta incompleta regularizada (Lentz) sobre math.Lgamma — el corpus no
// trae ninguna librería de estadística en Go.

import "math"

// TTestResult es el resultado explícito del test de significancia.
// Sufficient=false significa "insufficient_data": por debajo del mínimo de
// muestra (o stdev cero) no se reporta un p-value numérico.
type TTestResult struct {
	TStat      float64
	DF         int
	PValue     float64
	Sufficient bool
}

// OneSidedTTest corre el t-test de una muestra sobre la serie de retornos.
// H0: mean <= 0. p-value de una cola (superior).
func OneSidedTTest(returns []float64, minSample int) TTestResult {
	n := len(returns)
	res := TTestResult{DF: n - 1}
	if n < minSample || n < 2 {
		res.DF = max(res.DF, 0)
		return res
	}

	mean := meanOf(returns)
	sd := sampleStdev(returns, mean)
	if sd == 0 {
		return res
	}

	res.TStat = mean / (sd / math.Sqrt(float64(n)))
	res.PValue = studentSurvival(res.TStat, float64(res.DF))
	res.Sufficient = true
	return res
}

// studentSurvival devuelve P(T > t) para una t de Student con df grados.
func studentSurvival(t, df float64) float64 {
	if t < 0 {
		return 1 - studentSurvival(-t, df)
	}
	x := df / (df + t*t)
	return 0.5 * regIncBeta(df/2, 0.5, x)
}

// regIncBeta es la función beta incompleta regularizada I_x(a,b).
func regIncBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	lbeta, _ := math.Lgamma(a + b)
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	front := math.Exp(lbeta - la - lb + a*math.Log(x) + b*math.Log(1-x))

	// La fracción continua converge rápido en x < (a+1)/(a+b+2);
	// fuera de ese rango se usa la simetría I_x(a,b) = 1 − I_{1−x}(b,a).
	if x < (a+1)/(a+b+2) {
		return front * betacf(a, b, x) / a
	}
	return 1 - front*betacf(b, a, 1-x)/b
}

// betacf evalúa la fracción continua de la beta incompleta (método de Lentz).
func betacf(a, b, x float64) float64 {
	const (
		maxIter = 200
		eps     = 3e-14
		fpmin   = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
