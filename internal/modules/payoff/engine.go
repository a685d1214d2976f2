// Package payoff evaluates strategy payoff and valuation curves across a
// range of underlying prices, and derives the summary metrics (max profit
// and loss, breakevens, aggregate greeks, probability of profit) that the
// analysis endpoints report.
package payoff

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/domain"
	"github.com/aristath/options-trader/internal/modules/pricing"
	"github.com/aristath/options-trader/pkg/formulas"
)

const (
	// DefaultSamples is the curve resolution used when the caller does not
	// ask for a specific one
	DefaultSamples = 200

	// rangeLow and rangeHigh bound the automatic price range relative to
	// the lowest and highest reference price of the strategy
	rangeLow  = 0.5
	rangeHigh = 1.5

	daysPerYear = 365.0
)

// Engine computes payoff and valuation curves for strategies.
type Engine struct {
	svc  *pricing.Service
	pool *pricing.WorkerPool
	log  zerolog.Logger
}

// NewEngine creates a payoff engine backed by the given pricing service.
func NewEngine(svc *pricing.Service, pool *pricing.WorkerPool, log zerolog.Logger) *Engine {
	if log.GetLevel() == zerolog.Disabled {
		log = zerolog.Nop()
	}
	return &Engine{
		svc:  svc,
		pool: pool,
		log:  log.With().Str("component", "payoff").Logger(),
	}
}

// PriceRange returns an evenly spaced sampling range covering every strike
// of the strategy and the current spot, padded to half and one-and-a-half
// times the extreme reference prices.
func (e *Engine) PriceRange(strat domain.Strategy, spot float64, samples int) []float64 {
	if samples <= 1 {
		samples = DefaultSamples
	}

	lo, hi := spot, spot
	for _, leg := range strat.Legs {
		ref := leg.Strike
		if !leg.Instrument.IsOption() {
			ref = leg.EntryPrice
		}
		if ref <= 0 {
			continue
		}
		if ref < lo || lo <= 0 {
			lo = ref
		}
		if ref > hi {
			hi = ref
		}
	}

	if hi <= 0 {
		hi = 1
	}
	if lo <= 0 {
		lo = hi
	}

	return formulas.PriceRange(lo*rangeLow, hi*rangeHigh, samples)
}

// legExpirationValue is the value of one leg at expiration for a given
// underlying price, including direction, quantity and contract multiplier.
func legExpirationValue(leg domain.Leg, price float64) float64 {
	var perShare float64
	if leg.Instrument.IsOption() {
		perShare = leg.IntrinsicValue(price) - leg.EntryPrice
	} else {
		perShare = price - leg.EntryPrice
	}
	return perShare * leg.Direction.Sign() * float64(leg.Quantity) * leg.Multiplier()
}

// ExpirationPayoff evaluates the strategy payoff at expiration for every
// price in the sample range. A strategy with no legs produces a flat zero
// curve rather than an error.
func (e *Engine) ExpirationPayoff(strat domain.Strategy, prices []float64) []domain.CurvePoint {
	curve := make([]domain.CurvePoint, len(prices))

	if len(strat.Legs) == 0 {
		e.log.Warn().Str("id", strat.ID).Msg("Payoff requested for a strategy with no legs")
		for i, p := range prices {
			curve[i] = domain.CurvePoint{Price: p}
		}
		return curve
	}

	for i, p := range prices {
		total := 0.0
		for _, leg := range strat.Legs {
			total += legExpirationValue(leg, p)
		}
		curve[i] = domain.CurvePoint{Price: p, Value: total}
	}

	return curve
}

// PayoffAt evaluates the expiration payoff at a single underlying price.
func (e *Engine) PayoffAt(strat domain.Strategy, price float64) float64 {
	total := 0.0
	for _, leg := range strat.Legs {
		total += legExpirationValue(leg, price)
	}
	return total
}

// CurrentValue evaluates the mark-to-model value of the strategy for every
// price in the sample range, pricing each option leg at its remaining time
// to expiry as of the valuation date. Legs that are already expired, or
// whose expiry cannot be parsed, are valued at intrinsic.
func (e *Engine) CurrentValue(strat domain.Strategy, prices []float64, asOf time.Time, riskFree float64) []domain.CurvePoint {
	curve := make([]domain.CurvePoint, len(prices))

	if len(strat.Legs) == 0 {
		e.log.Warn().Str("id", strat.ID).Msg("Valuation requested for a strategy with no legs")
		for i, p := range prices {
			curve[i] = domain.CurvePoint{Price: p}
		}
		return curve
	}

	// One pricing request per (price, option leg) pair, fanned out over
	// the worker pool. Stock legs are linear and priced inline.
	type slot struct{ point, leg int }

	var reqs []domain.PricingRequest
	var slots []slot
	for i, p := range prices {
		for j, leg := range strat.Legs {
			if !leg.Instrument.IsOption() {
				continue
			}
			reqs = append(reqs, domain.PricingRequest{
				Instrument:  leg.Instrument,
				Spot:        p,
				Strike:      leg.Strike,
				TimeToYears: e.yearsToExpiry(leg.Expiry, asOf),
				RiskFree:    riskFree,
				Volatility:  leg.Vol(),
			})
			slots = append(slots, slot{point: i, leg: j})
		}
	}

	values := e.pool.TheoreticalBatch(reqs)

	for i, p := range prices {
		total := 0.0
		for _, leg := range strat.Legs {
			if !leg.Instrument.IsOption() {
				total += (p - leg.EntryPrice) * leg.Direction.Sign() * float64(leg.Quantity)
			}
		}
		curve[i] = domain.CurvePoint{Price: p, Value: total}
	}

	for k, s := range slots {
		leg := strat.Legs[s.leg]
		perShare := values[k] - leg.EntryPrice
		curve[s.point].Value += perShare * leg.Direction.Sign() * float64(leg.Quantity) * leg.Multiplier()
	}

	return curve
}

// Breakevens finds the underlying prices where the expiration payoff
// crosses zero.
func (e *Engine) Breakevens(strat domain.Strategy, prices []float64) []float64 {
	curve := e.ExpirationPayoff(strat, prices)

	payoffs := make([]float64, len(curve))
	for i, pt := range curve {
		payoffs[i] = pt.Value
	}
	return formulas.FindBreakevens(prices, payoffs)
}

// yearsToExpiry converts a leg expiry date to year fractions from the
// valuation date. Expired or unparsable dates count as zero, which prices
// the leg at intrinsic.
func (e *Engine) yearsToExpiry(expiry string, asOf time.Time) float64 {
	t, err := time.Parse("2006-01-02", expiry)
	if err != nil {
		e.log.Warn().Str("expiry", expiry).Msg("Unparsable leg expiry, valuing at intrinsic")
		return 0
	}

	days := t.Sub(asOf).Hours() / 24
	if days <= 0 {
		return 0
	}
	return days / daysPerYear
}
