package pricing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/options-trader/internal/domain"
	"github.com/aristath/options-trader/pkg/formulas"
)

func baseRequest() domain.PricingRequest {
	return domain.PricingRequest{
		Instrument:  domain.InstrumentCall,
		Spot:        100,
		Strike:      110,
		TimeToYears: 0.5,
		RiskFree:    0.05,
		Volatility:  0.25,
	}
}

func TestService_PriceModels(t *testing.T) {
	svc := NewService(zerolog.Nop())
	req := baseRequest()

	bs := svc.Price(domain.ModelBlackScholes, req)
	assert.Greater(t, bs, 0.0)

	req.Steps = 200
	tree := svc.Price(domain.ModelBinomial, req)
	assert.InDelta(t, bs, tree, 0.1, "European tree tracks the closed form")

	req.Paths = 50000
	req.Steps = 50
	mc := svc.Price(domain.ModelMonteCarlo, req)
	assert.InDelta(t, bs, mc, 0.5)
}

func TestService_PriceNonOption(t *testing.T) {
	svc := NewService(zerolog.Nop())
	req := baseRequest()
	req.Instrument = domain.InstrumentStock

	assert.Zero(t, svc.Price(domain.ModelBlackScholes, req))
}

func TestService_TheoreticalValueModelSelection(t *testing.T) {
	svc := NewService(zerolog.Nop())

	tests := []struct {
		name        string
		strike      float64
		timeToYears float64
		wantModel   string
	}{
		{"far dated and away from the money", 110, 0.5, "black_scholes"},
		{"short dated", 110, 3.0 / 365, "binomial"},
		{"near the money", 101, 0.5, "binomial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.Strike = tt.strike
			req.TimeToYears = tt.timeToYears

			got := svc.TheoreticalValue(req)

			// The American tree never prices below the European closed
			// form, so matching against both identifies the path taken.
			bs := formulas.BlackScholes(true, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, req.Volatility)
			tree := formulas.BinomialTree(true, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, req.Volatility,
				formulas.DefaultTreeSteps, true)

			if tt.wantModel == "binomial" {
				assert.InDelta(t, tree, got, 1e-9)
			} else {
				assert.InDelta(t, bs, got, 1e-9)
			}
		})
	}
}

func TestService_Greeks(t *testing.T) {
	svc := NewService(zerolog.Nop())
	req := baseRequest()

	g := svc.Greeks(req)
	assert.False(t, g.Degraded)
	assert.Greater(t, g.Delta, 0.0)
	assert.Greater(t, g.Gamma, 0.0)
	assert.Less(t, g.Theta, 0.0)

	req.Instrument = domain.InstrumentPut
	p := svc.Greeks(req)
	assert.Less(t, p.Delta, 0.0)
	assert.InDelta(t, g.Gamma, p.Gamma, 1e-12)
	assert.InDelta(t, g.Vega, p.Vega, 1e-12)
}

func TestService_GreeksNonOption(t *testing.T) {
	svc := NewService(zerolog.Nop())
	req := baseRequest()
	req.Instrument = domain.InstrumentStock

	assert.Equal(t, domain.Greeks{}, svc.Greeks(req))
}

func TestService_ImpliedVolatilityRoundTrip(t *testing.T) {
	svc := NewService(zerolog.Nop())
	req := baseRequest()
	req.Volatility = 0.4

	price := svc.Price(domain.ModelBlackScholes, req)
	iv := svc.ImpliedVolatility(req, price)
	assert.InDelta(t, 0.4, iv, 1e-2)
}

func TestService_Stateless(t *testing.T) {
	svc := NewService(zerolog.Nop())
	req := baseRequest()

	first := svc.Price(domain.ModelBlackScholes, req)
	second := svc.Price(domain.ModelBlackScholes, req)
	assert.Equal(t, first, second, "identical inputs produce identical outputs")
}
