package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImpliedVolatility_RoundTrip(t *testing.T) {
	// ImpliedVol(BlackScholes(sigma)) must recover sigma across the whole
	// admissible range
	sigmas := []float64{0.05, 0.10, 0.20, 0.30, 0.50, 0.80, 1.20, 2.00}

	for _, sigma := range sigmas {
		for _, call := range []bool{true, false} {
			price := BlackScholes(call, 100, 105, 0.5, 0.04, sigma)
			if price < 0.01 {
				continue // essentially worthless, no information about vol
			}
			if price <= Intrinsic(call, 100, 105) {
				// Low-vol ITM puts can price under intrinsic; the solver
				// returns the floor for those, so vol is unrecoverable
				continue
			}
			recovered := ImpliedVolatility(call, 100, 105, 0.5, 0.04, price)
			assert.InDelta(t, sigma, recovered, 1e-2,
				"sigma=%v call=%v price=%v", sigma, call, price)
		}
	}
}

func TestImpliedVolatility_LowVolITMPutHitsFloor(t *testing.T) {
	// At very low vol a European ITM put prices below its intrinsic value
	// of 5 (early exercise would be worth more); such a quote admits no
	// solution and the solver returns the floor rather than inverting
	for _, sigma := range []float64{0.05, 0.10} {
		price := BlackScholes(false, 100, 105, 0.5, 0.04, sigma)
		assert.Less(t, price, Intrinsic(false, 100, 105), "sigma=%v", sigma)
		assert.Equal(t, MinVolatility,
			ImpliedVolatility(false, 100, 105, 0.5, 0.04, price), "sigma=%v", sigma)
	}
}

func TestImpliedVolatility_BelowIntrinsicReturnsFloor(t *testing.T) {
	// Intrinsic value of this call is 20; a quote below it has no solution
	iv := ImpliedVolatility(true, 120, 100, 0.5, 0.05, 15)
	assert.Equal(t, MinVolatility, iv)
}

func TestImpliedVolatility_NonPositivePrice(t *testing.T) {
	assert.Equal(t, MinVolatility, ImpliedVolatility(true, 100, 100, 0.5, 0.05, 0))
	assert.Equal(t, MinVolatility, ImpliedVolatility(false, 100, 100, 0.5, 0.05, -1))
}

func TestImpliedVolatility_WithinBounds(t *testing.T) {
	// Even absurd quotes must produce a volatility inside [floor, cap]
	quotes := []float64{0.0001, 1, 50, 99.9}
	for _, q := range quotes {
		iv := ImpliedVolatility(true, 100, 100, 0.5, 0.05, q)
		assert.GreaterOrEqual(t, iv, MinVolatility)
		assert.LessOrEqual(t, iv, MaxVolatility)
	}
}

func TestImpliedVolatility_DeepOTMFallsBackToBisection(t *testing.T) {
	// Deep out of the money the pricing function is nearly flat in
	// volatility and Newton tends to diverge; the answer must still be
	// usable and consistent with repricing.
	price := BlackScholes(true, 100, 200, 0.1, 0.05, 1.5)
	if price <= 0 {
		t.Skip("contract prices to zero at these parameters")
	}

	iv := ImpliedVolatility(true, 100, 200, 0.1, 0.05, price)
	repriced := BlackScholes(true, 100, 200, 0.1, 0.05, iv)
	assert.InDelta(t, price, repriced, 1e-3)
}

func TestImpliedVolatility_QuoteAboveUpperBound(t *testing.T) {
	// A quote richer than the 500% vol price clamps to the cap
	maxPrice := BlackScholes(true, 100, 100, 0.5, 0.05, MaxVolatility)
	iv := ImpliedVolatility(true, 100, 100, 0.5, 0.05, maxPrice*1.01)
	assert.Equal(t, MaxVolatility, iv)
}
