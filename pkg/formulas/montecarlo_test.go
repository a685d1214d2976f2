package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonteCarloSeeded_ConvergesToBlackScholes(t *testing.T) {
	tests := []struct {
		name   string
		call   bool
		spot   float64
		strike float64
	}{
		{"ATM call", true, 100, 100},
		{"OTM call", true, 100, 110},
		{"ATM put", false, 100, 100},
		{"ITM put", false, 100, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := BlackScholes(tt.call, tt.spot, tt.strike, 1, 0.05, 0.2)
			mc := MonteCarloSeeded(tt.call, tt.spot, tt.strike, 1, 0.05, 0.2, 50000, 50, 42)

			// Sampling error at 50k paths is well under half a point
			assert.InDelta(t, bs, mc, 0.5)
		})
	}
}

func TestMonteCarloSeeded_Reproducible(t *testing.T) {
	a := MonteCarloSeeded(true, 100, 100, 1, 0.05, 0.2, 5000, 20, 7)
	b := MonteCarloSeeded(true, 100, 100, 1, 0.05, 0.2, 5000, 20, 7)
	assert.Equal(t, a, b)
}

func TestMonteCarloSeeded_AtExpiry(t *testing.T) {
	assert.Equal(t, 12.0, MonteCarloSeeded(true, 112, 100, 0, 0.05, 0.2, 1000, 10, 1))
	assert.Equal(t, 0.0, MonteCarloSeeded(false, 112, 100, 0, 0.05, 0.2, 1000, 10, 1))
}

func TestMonteCarloSeeded_NonNegative(t *testing.T) {
	price := MonteCarloSeeded(false, 100, 50, 0.5, 0.05, 0.8, 2000, 20, 3)
	assert.GreaterOrEqual(t, price, 0.0)
}

func TestMonteCarloSeeded_WorkSizeDefaults(t *testing.T) {
	// Non-positive work sizes fall back to the documented defaults rather
	// than failing
	price := MonteCarloSeeded(true, 100, 100, 0.5, 0.05, 0.2, 0, 0, 9)
	bs := BlackScholes(true, 100, 100, 0.5, 0.05, 0.2)
	assert.InDelta(t, bs, price, 1.0)
}
