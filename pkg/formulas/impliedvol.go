package formulas

import "math"

const (
	// MaxVolatility caps implied volatility solutions at 500%
	MaxVolatility = 5.0

	// ivSeed is the Newton starting point
	ivSeed = 0.30

	// ivTolerance is the price-error convergence tolerance
	ivTolerance = 1e-4

	// ivMaxIterations bounds both root finders
	ivMaxIterations = 100
)

// ImpliedVolatility recovers the volatility that reproduces an observed
// market price under the Black-Scholes model. The result is always within
// [MinVolatility, MaxVolatility].
//
// The solver is two-stage: a Newton iteration seeded at 30% using the
// analytic vega as the derivative, falling back to bisection over the full
// admissible range when Newton diverges or leaves it. Newton can diverge for
// deep out-of-the-money contracts where the price is nearly flat in
// volatility; bisection is slower but always converges within the bracket.
func ImpliedVolatility(call bool, spot, strike, t, rate, marketPrice float64) float64 {
	if marketPrice <= 0 {
		return MinVolatility
	}

	// Prices below intrinsic value have no volatility solution.
	if marketPrice < Intrinsic(call, spot, strike) {
		return MinVolatility
	}

	if sigma, ok := impliedVolNewton(call, spot, strike, t, rate, marketPrice); ok {
		return sigma
	}

	return impliedVolBisection(call, spot, strike, t, rate, marketPrice)
}

// impliedVolNewton runs a Newton-Raphson iteration on
// f(sigma) = BlackScholes(sigma) - marketPrice, using the analytic vega as
// f'. Returns ok=false when the iteration fails to converge, meets a flat
// derivative, or walks out of the admissible volatility range.
func impliedVolNewton(call bool, spot, strike, t, rate, marketPrice float64) (float64, bool) {
	sigma := ivSeed

	for i := 0; i < ivMaxIterations; i++ {
		price := BlackScholes(call, spot, strike, t, rate, sigma)
		diff := price - marketPrice
		if math.Abs(diff) < ivTolerance {
			if sigma < MinVolatility || sigma > MaxVolatility {
				return 0, false
			}
			return sigma, true
		}

		// Raw vega (per unit volatility, not per percentage point)
		vega := BlackScholesGreeks(call, spot, strike, t, rate, sigma).Vega * 100
		if vega < 1e-10 || math.IsNaN(vega) {
			return 0, false
		}

		sigma -= diff / vega
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 || sigma > MaxVolatility*2 {
			return 0, false
		}
	}

	return 0, false
}

// impliedVolBisection halves [MinVolatility, MaxVolatility] until the priced
// error is within tolerance. When the market price falls outside the prices
// implied by the bounds, the nearer bound is returned.
func impliedVolBisection(call bool, spot, strike, t, rate, marketPrice float64) float64 {
	low, high := MinVolatility, MaxVolatility

	lowPrice := BlackScholes(call, spot, strike, t, rate, low)
	highPrice := BlackScholes(call, spot, strike, t, rate, high)

	if marketPrice <= lowPrice {
		return low
	}
	if marketPrice >= highPrice {
		return high
	}

	for i := 0; i < ivMaxIterations; i++ {
		mid := (low + high) / 2
		midPrice := BlackScholes(call, spot, strike, t, rate, mid)

		if math.Abs(midPrice-marketPrice) < ivTolerance {
			return mid
		}

		if midPrice < marketPrice {
			low = mid
		} else {
			high = mid
		}
	}

	return (low + high) / 2
}
