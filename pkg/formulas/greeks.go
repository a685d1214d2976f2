package formulas

import "math"

// Greeks holds the Black-Scholes sensitivity vector. Theta is per calendar
// day; vega and rho are scaled per one percentage point of volatility/rate.
type Greeks struct {
	Delta    float64
	Gamma    float64
	Theta    float64
	Vega     float64
	Rho      float64
	Degraded bool
}

// neutralGreeks is the documented fallback when the closed-form derivatives
// produce non-finite values. It keeps batch computations alive with a usable,
// clearly flagged answer instead of aborting.
func neutralGreeks(call bool) Greeks {
	delta := 0.5
	if !call {
		delta = -0.5
	}
	return Greeks{
		Delta:    delta,
		Gamma:    0.01,
		Vega:     0.01,
		Theta:    -0.01,
		Rho:      0.01,
		Degraded: true,
	}
}

// expiryGreeks is the at-or-past-expiry edge case: delta collapses to its
// exercise indicator and every other sensitivity is zero.
func expiryGreeks(call bool, spot, strike float64) Greeks {
	var delta float64
	if call {
		if spot > strike {
			delta = 1
		}
	} else {
		if spot < strike {
			delta = -1
		}
	}
	return Greeks{Delta: delta}
}

// BlackScholesGreeks calculates delta, gamma, theta, vega and rho as the
// closed-form derivatives of the Black-Scholes price. Gamma and vega are
// identical for calls and puts sharing the same parameters.
func BlackScholesGreeks(call bool, spot, strike, t, rate, sigma float64) Greeks {
	if t <= 0 {
		return expiryGreeks(call, spot, strike)
	}
	if sigma <= 0 {
		sigma = MinVolatility
	}
	if spot <= 0 || strike <= 0 {
		return neutralGreeks(call)
	}

	d1, d2 := d1d2(spot, strike, t, rate, sigma)
	pdfD1 := stdNormal.Prob(d1)
	discount := math.Exp(-rate * t)

	g := Greeks{
		Gamma: pdfD1 / (spot * sigma * math.Sqrt(t)),
		Vega:  spot * pdfD1 * math.Sqrt(t) / 100,
	}

	if call {
		g.Delta = stdNormal.CDF(d1)
		g.Theta = (-(spot*pdfD1*sigma)/(2*math.Sqrt(t)) - rate*strike*discount*stdNormal.CDF(d2)) / 365
		g.Rho = strike * t * discount * stdNormal.CDF(d2) / 100
	} else {
		g.Delta = stdNormal.CDF(d1) - 1
		g.Theta = (-(spot*pdfD1*sigma)/(2*math.Sqrt(t)) + rate*strike*discount*stdNormal.CDF(-d2)) / 365
		g.Rho = -strike * t * discount * stdNormal.CDF(-d2) / 100
	}

	for _, v := range []float64{g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return neutralGreeks(call)
		}
	}

	return g
}
