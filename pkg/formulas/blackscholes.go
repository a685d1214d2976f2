package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MinVolatility is the clamp applied to non-positive volatilities wherever
// they would otherwise cause division by zero.
const MinVolatility = 1e-4

// stdNormal is the standard normal distribution used for N(d1), N(d2) terms
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Intrinsic returns the immediate exercise value of an option.
// This is also the terminal condition shared by the tree and Monte Carlo
// models and the at-expiry result of every pricer.
func Intrinsic(call bool, spot, strike float64) float64 {
	if call {
		return math.Max(0, spot-strike)
	}
	return math.Max(0, strike-spot)
}

// d1d2 computes the two standard normal arguments of the Black-Scholes
// formula. Callers must ensure t > 0 and sigma > 0.
func d1d2(spot, strike, t, rate, sigma float64) (float64, float64) {
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return d1, d2
}

// BlackScholes calculates the option price using the Black-Scholes formula.
//
// Args:
//   - call: true for a call, false for a put
//   - spot: current underlying price
//   - strike: strike price
//   - t: time to expiration in years
//   - rate: risk-free interest rate (decimal)
//   - sigma: volatility (decimal)
//
// Edge cases: t <= 0 returns intrinsic value; sigma <= 0 is clamped to
// MinVolatility; the result is floored at zero; a non-finite intermediate
// result falls back to intrinsic value rather than propagating.
func BlackScholes(call bool, spot, strike, t, rate, sigma float64) float64 {
	if t <= 0 {
		return Intrinsic(call, spot, strike)
	}
	if sigma <= 0 {
		sigma = MinVolatility
	}
	if spot <= 0 || strike <= 0 {
		return Intrinsic(call, spot, strike)
	}

	d1, d2 := d1d2(spot, strike, t, rate, sigma)

	var price float64
	if call {
		price = spot*stdNormal.CDF(d1) - strike*math.Exp(-rate*t)*stdNormal.CDF(d2)
	} else {
		price = strike*math.Exp(-rate*t)*stdNormal.CDF(-d2) - spot*stdNormal.CDF(-d1)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Intrinsic(call, spot, strike)
	}

	return math.Max(0, price)
}
