package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRange(t *testing.T) {
	prices := PriceRange(50, 150, 5)
	assert.Equal(t, []float64{50, 75, 100, 125, 150}, prices)

	assert.Equal(t, []float64{10}, PriceRange(10, 20, 1))
}

func TestFindBreakevens_StraightLineSingleCrossing(t *testing.T) {
	// Payoff -10 at 90, +10 at 110: crosses zero exactly at 100
	prices := []float64{90, 110}
	payoffs := []float64{-10, 10}

	crossings := FindBreakevens(prices, payoffs)
	require.Len(t, crossings, 1)
	assert.InDelta(t, 100.0, crossings[0], 1e-9)
}

func TestFindBreakevens_InterpolatedCrossing(t *testing.T) {
	// -5 at 100, +15 at 110: zero at 100 + 10*(5/20) = 102.5
	crossings := FindBreakevens([]float64{100, 110}, []float64{-5, 15})
	require.Len(t, crossings, 1)
	assert.InDelta(t, 102.5, crossings[0], 1e-9)
}

func TestFindBreakevens_MonotonicallyPositiveHasNone(t *testing.T) {
	prices := PriceRange(50, 150, 11)
	payoffs := make([]float64, len(prices))
	for i := range payoffs {
		payoffs[i] = 1 + float64(i)
	}

	assert.Empty(t, FindBreakevens(prices, payoffs))
}

func TestFindBreakevens_StraddleHasTwo(t *testing.T) {
	// Long straddle at 100, total premium 10: V(p) = |p-100| - 10
	prices := PriceRange(70, 130, 61)
	payoffs := make([]float64, len(prices))
	for i, p := range prices {
		payoffs[i] = abs(p-100) - 10
	}

	crossings := FindBreakevens(prices, payoffs)
	require.Len(t, crossings, 2)
	assert.InDelta(t, 90.0, crossings[0], 1e-9)
	assert.InDelta(t, 110.0, crossings[1], 1e-9)
}

func TestFindBreakevens_ZeroTouchSample(t *testing.T) {
	// The middle sample sits exactly on zero while the curve keeps rising;
	// it must be reported exactly once
	crossings := FindBreakevens([]float64{90, 100, 110}, []float64{-10, 0, 10})
	require.Len(t, crossings, 1)
	assert.InDelta(t, 100.0, crossings[0], 1e-9)
}

func TestFindBreakevens_AscendingOrder(t *testing.T) {
	// W-shaped curve with multiple crossings comes back sorted
	prices := []float64{10, 20, 30, 40, 50, 60}
	payoffs := []float64{5, -5, 5, -5, 5, 5}

	crossings := FindBreakevens(prices, payoffs)
	require.Len(t, crossings, 4)
	for i := 1; i < len(crossings); i++ {
		assert.Greater(t, crossings[i], crossings[i-1])
	}
}

func TestFindBreakevens_DegenerateInput(t *testing.T) {
	assert.Nil(t, FindBreakevens(nil, nil))
	assert.Nil(t, FindBreakevens([]float64{100}, []float64{1}))
	assert.Nil(t, FindBreakevens([]float64{100, 110}, []float64{1}))
}
