package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinomialTree_ConvergesToBlackScholes(t *testing.T) {
	// European prices converge to the analytic price as steps grow
	bs := BlackScholes(true, 100, 100, 1, 0.05, 0.2)

	coarse := BinomialTree(true, 100, 100, 1, 0.05, 0.2, 50, false)
	fine := BinomialTree(true, 100, 100, 1, 0.05, 0.2, 500, false)

	assert.InDelta(t, bs, coarse, 0.1)
	assert.InDelta(t, bs, fine, 0.02)

	errCoarse := abs(bs - coarse)
	errFine := abs(bs - fine)
	assert.LessOrEqual(t, errFine, errCoarse, "error must shrink with step count")
}

func TestBinomialTree_EuropeanPut(t *testing.T) {
	bs := BlackScholes(false, 100, 100, 1, 0.05, 0.2)
	tree := BinomialTree(false, 100, 100, 1, 0.05, 0.2, 500, false)
	assert.InDelta(t, bs, tree, 0.02)
}

func TestBinomialTree_AmericanPutCarriesEarlyExercisePremium(t *testing.T) {
	// An American put is worth at least its European twin, and strictly
	// more when deep in the money with a meaningful rate
	european := BinomialTree(false, 80, 100, 1, 0.08, 0.2, 200, false)
	american := BinomialTree(false, 80, 100, 1, 0.08, 0.2, 200, true)

	assert.GreaterOrEqual(t, american, european)
	assert.Greater(t, american, european+1e-6, "deep ITM put should exercise early")

	// And never below intrinsic
	assert.GreaterOrEqual(t, american, 20.0)
}

func TestBinomialTree_AmericanCallMatchesEuropeanWithoutDividends(t *testing.T) {
	// Early exercise of a call on a non-dividend underlying is never optimal
	european := BinomialTree(true, 100, 100, 1, 0.05, 0.2, 200, false)
	american := BinomialTree(true, 100, 100, 1, 0.05, 0.2, 200, true)
	assert.InDelta(t, european, american, 1e-9)
}

func TestBinomialTree_AtExpiry(t *testing.T) {
	assert.Equal(t, 15.0, BinomialTree(true, 115, 100, 0, 0.05, 0.2, 100, false))
	assert.Equal(t, 0.0, BinomialTree(false, 115, 100, 0, 0.05, 0.2, 100, true))
}

func TestBinomialTree_DefaultsAndClamps(t *testing.T) {
	// Zero steps and zero volatility fall back to usable defaults
	price := BinomialTree(true, 100, 100, 1, 0.05, 0, 0, false)
	assert.GreaterOrEqual(t, price, 0.0)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
