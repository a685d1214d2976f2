// Package pricing exposes the option pricing models, the greeks calculator
// and the implied volatility solver as a single stateless service.
package pricing

import (
	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/domain"
	"github.com/aristath/options-trader/pkg/formulas"
)

const (
	// shortDatedDays is the expiry horizon below which the tree model is
	// preferred over the closed form
	shortDatedDays = 7.0

	// nearMoneyBand is the |strike/spot - 1| band treated as near the money
	nearMoneyBand = 0.03
)

// Service prices options and computes their sensitivities. It holds no
// state between calls; identical inputs always produce identical outputs.
type Service struct {
	log zerolog.Logger
}

// NewService creates a pricing service.
func NewService(log zerolog.Logger) *Service {
	if log.GetLevel() == zerolog.Disabled {
		log = zerolog.Nop()
	}
	return &Service{
		log: log.With().Str("component", "pricing").Logger(),
	}
}

// Price computes the theoretical value of an option contract under the
// requested model. Numerical trouble never propagates: every model degrades
// to its documented fallback and the request parameters are logged for
// diagnostics.
func (s *Service) Price(model domain.PricingModel, req domain.PricingRequest) float64 {
	if !req.Instrument.IsOption() {
		s.log.Warn().
			Str("instrument", string(req.Instrument)).
			Msg("Pricing requested for a non-option instrument")
		return 0
	}

	call := req.Instrument == domain.InstrumentCall

	switch model {
	case domain.ModelBinomial:
		return formulas.BinomialTree(
			call, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, req.Volatility,
			req.Steps, req.Style == domain.ExerciseAmerican,
		)
	case domain.ModelMonteCarlo:
		return formulas.MonteCarlo(
			call, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, req.Volatility,
			req.Paths, req.Steps,
		)
	default:
		return formulas.BlackScholes(
			call, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, req.Volatility,
		)
	}
}

// TheoreticalValue picks the model for a contract the way the analysis flow
// does everywhere: short-dated or near-the-money contracts go through the
// tree (which handles the early-exercise premium that dominates them),
// everything else through the closed form.
func (s *Service) TheoreticalValue(req domain.PricingRequest) float64 {
	if !req.Instrument.IsOption() {
		return 0
	}

	daysToExpiry := req.TimeToYears * 365
	nearMoney := req.Spot > 0 && abs(req.Strike/req.Spot-1) < nearMoneyBand

	if daysToExpiry < shortDatedDays || nearMoney {
		if req.Style == "" {
			req.Style = domain.ExerciseAmerican
		}
		return s.Price(domain.ModelBinomial, req)
	}

	return s.Price(domain.ModelBlackScholes, req)
}

// Greeks computes the sensitivity vector for a contract. A degraded result
// carries the neutral fallback values and is flagged, never aborted.
func (s *Service) Greeks(req domain.PricingRequest) domain.Greeks {
	if !req.Instrument.IsOption() {
		s.log.Warn().
			Str("instrument", string(req.Instrument)).
			Msg("Greeks requested for a non-option instrument")
		return domain.Greeks{}
	}

	call := req.Instrument == domain.InstrumentCall
	g := formulas.BlackScholesGreeks(call, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, req.Volatility)

	if g.Degraded {
		s.log.Warn().
			Float64("spot", req.Spot).
			Float64("strike", req.Strike).
			Float64("t", req.TimeToYears).
			Msg("Greeks degraded to neutral fallback")
	}

	return domain.Greeks{
		Delta:    g.Delta,
		Gamma:    g.Gamma,
		Theta:    g.Theta,
		Vega:     g.Vega,
		Rho:      g.Rho,
		Degraded: g.Degraded,
	}
}

// ImpliedVolatility recovers the volatility implied by an observed market
// price. The request's Volatility field is ignored.
func (s *Service) ImpliedVolatility(req domain.PricingRequest, marketPrice float64) float64 {
	if !req.Instrument.IsOption() {
		return domain.MinVolatility
	}

	call := req.Instrument == domain.InstrumentCall
	return formulas.ImpliedVolatility(call, req.Spot, req.Strike, req.TimeToYears, req.RiskFree, marketPrice)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
