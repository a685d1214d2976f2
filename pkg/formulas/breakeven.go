package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// PriceRange returns n evenly spaced prices across [min, max] inclusive.
func PriceRange(min, max float64, n int) []float64 {
	if n < 2 {
		return []float64{min}
	}
	return floats.Span(make([]float64, n), min, max)
}

// FindBreakevens locates the zero crossings of a payoff curve sampled at the
// given prices. Adjacent pairs are scanned for a sign change, counting a
// sample exactly at zero as a crossing on both sides, and the exact crossing
// price is linearly interpolated between the two samples. Crossings come
// back in ascending price order; the curve may have zero, one, two or more.
func FindBreakevens(prices, payoffs []float64) []float64 {
	if len(prices) != len(payoffs) || len(prices) < 2 {
		return nil
	}

	var crossings []float64
	for i := 1; i < len(prices); i++ {
		y0, y1 := payoffs[i-1], payoffs[i]

		crossesUp := y0 <= 0 && y1 > 0
		crossesDown := y0 >= 0 && y1 < 0
		if !crossesUp && !crossesDown {
			continue
		}
		if y1 == y0 {
			continue
		}

		x0, x1 := prices[i-1], prices[i]
		crossings = append(crossings, x0+(x1-x0)*(-y0)/(y1-y0))
	}

	sort.Float64s(crossings)
	return dedupeCrossings(crossings, prices)
}

// dedupeCrossings collapses crossings a zero-touch sample reports from both
// of its intervals. Two crossings closer than half the sample spacing are
// the same zero.
func dedupeCrossings(crossings, prices []float64) []float64 {
	if len(crossings) < 2 {
		return crossings
	}

	tolerance := math.Abs(prices[1]-prices[0]) / 2
	deduped := crossings[:1]
	for _, c := range crossings[1:] {
		if c-deduped[len(deduped)-1] > tolerance {
			deduped = append(deduped, c)
		}
	}
	return deduped
}
