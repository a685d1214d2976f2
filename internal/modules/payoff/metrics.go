package payoff

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/options-trader/internal/domain"
	"github.com/aristath/options-trader/internal/modules/strategy"
	"github.com/aristath/options-trader/pkg/formulas"
)

// Metrics summarizes the risk profile of a strategy. Max profit and loss are
// taken from the sampled expiration curve; the unbounded flags mark sides
// that keep growing past the sampled range, in which case the corresponding
// figure is the largest sampled value rather than a true bound.
type Metrics struct {
	MaxProfit          float64       `json:"max_profit"`
	MaxProfitUnbounded bool          `json:"max_profit_unbounded,omitempty"`
	MaxLoss            float64       `json:"max_loss"`
	MaxLossUnbounded   bool          `json:"max_loss_unbounded,omitempty"`
	ProfitAtCurrent    float64       `json:"profit_at_current"`
	Breakevens         []float64     `json:"breakevens"`
	RiskReward         float64       `json:"risk_reward,omitempty"`
	NetPremium         float64       `json:"net_premium"`
	Greeks             domain.Greeks `json:"greeks"`
	ProbabilityProfit  float64       `json:"probability_of_profit"`
}

// Analyze computes the full metrics set for a strategy at the given spot.
// The price range and curve resolution follow PriceRange defaults.
func (e *Engine) Analyze(strat domain.Strategy, spot float64, asOf time.Time, riskFree float64) Metrics {
	prices := e.PriceRange(strat, spot, DefaultSamples)
	curve := e.ExpirationPayoff(strat, prices)

	payoffs := make([]float64, len(curve))
	for i, pt := range curve {
		payoffs[i] = pt.Value
	}

	m := Metrics{
		ProfitAtCurrent: e.PayoffAt(strat, spot),
		Breakevens:      formulas.FindBreakevens(prices, payoffs),
		NetPremium:      strategy.NetPremium(strat),
		Greeks:          e.AggregateGreeks(strat, spot, asOf, riskFree),
	}

	m.MaxProfit, m.MaxLoss = maxMin(payoffs)

	// The underlying is unbounded above, so a payoff still sloping at the
	// upper edge of the range has no finite extreme on that side. Below,
	// price zero bounds every payoff.
	if n := len(payoffs); n >= 2 {
		edge := payoffs[n-1] - payoffs[n-2]
		if edge > 0 {
			m.MaxProfitUnbounded = true
		}
		if edge < 0 {
			m.MaxLossUnbounded = true
		}
	}

	if !m.MaxProfitUnbounded && !m.MaxLossUnbounded && m.MaxLoss < 0 {
		m.RiskReward = m.MaxProfit / -m.MaxLoss
	}

	m.ProbabilityProfit = e.ProbabilityOfProfit(strat, spot, asOf, riskFree)

	return m
}

// AggregateGreeks sums the per-leg sensitivity vectors into a position-level
// one. Option legs contribute their full vector scaled by direction,
// quantity and the contract multiplier; stock legs contribute delta only,
// one per share.
func (e *Engine) AggregateGreeks(strat domain.Strategy, spot float64, asOf time.Time, riskFree float64) domain.Greeks {
	var total domain.Greeks

	for _, leg := range strat.Legs {
		scale := leg.Direction.Sign() * float64(leg.Quantity)

		if !leg.Instrument.IsOption() {
			total.Delta += scale
			continue
		}

		g := e.svc.Greeks(domain.PricingRequest{
			Instrument:  leg.Instrument,
			Spot:        spot,
			Strike:      leg.Strike,
			TimeToYears: e.yearsToExpiry(leg.Expiry, asOf),
			RiskFree:    riskFree,
			Volatility:  leg.Vol(),
		})

		scale *= domain.ContractMultiplier
		total.Delta += g.Delta * scale
		total.Gamma += g.Gamma * scale
		total.Theta += g.Theta * scale
		total.Vega += g.Vega * scale
		total.Rho += g.Rho * scale
		total.Degraded = total.Degraded || g.Degraded
	}

	return total
}

// ProbabilityOfProfit estimates the chance the strategy expires profitable
// under a lognormal terminal price with risk-neutral drift. The volatility
// is the average implied volatility of the option legs and the horizon is
// the nearest option expiry; a strategy with no live option legs degrades
// to a point estimate at the current spot.
func (e *Engine) ProbabilityOfProfit(strat domain.Strategy, spot float64, asOf time.Time, riskFree float64) float64 {
	sigma, horizon := e.terminalDistribution(strat, asOf)

	if spot <= 0 || sigma <= 0 || horizon <= 0 {
		if e.PayoffAt(strat, spot) > 0 {
			return 1
		}
		return 0
	}

	sigmaT := sigma * math.Sqrt(horizon)
	dist := distuv.LogNormal{
		Mu:    math.Log(spot) + (riskFree-0.5*sigma*sigma)*horizon,
		Sigma: sigmaT,
	}

	prices := e.PriceRange(strat, spot, DefaultSamples)
	curve := e.ExpirationPayoff(strat, prices)
	payoffs := make([]float64, len(curve))
	for i, pt := range curve {
		payoffs[i] = pt.Value
	}
	breakevens := formulas.FindBreakevens(prices, payoffs)

	if len(breakevens) == 0 {
		if e.PayoffAt(strat, spot) > 0 {
			return 1
		}
		return 0
	}

	// Integrate the terminal density over every interval where the payoff
	// is positive, sampling each interval at its midpoint.
	bounds := append([]float64{0}, breakevens...)
	bounds = append(bounds, math.Inf(1))

	prob := 0.0
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]

		mid := (lo + hi) / 2
		if math.IsInf(hi, 1) {
			mid = lo * 1.5
			if mid <= 0 {
				mid = spot
			}
		}

		if e.PayoffAt(strat, mid) <= 0 {
			continue
		}

		upper := 1.0
		if !math.IsInf(hi, 1) {
			upper = dist.CDF(hi)
		}
		lower := 0.0
		if lo > 0 {
			lower = dist.CDF(lo)
		}
		prob += upper - lower
	}

	return prob
}

// terminalDistribution derives the lognormal parameters for the strategy:
// the mean implied volatility of its option legs and the years to the
// nearest option expiry.
func (e *Engine) terminalDistribution(strat domain.Strategy, asOf time.Time) (sigma, horizon float64) {
	var vols []float64
	nearest := math.Inf(1)

	for _, leg := range strat.Legs {
		if !leg.Instrument.IsOption() {
			continue
		}
		vols = append(vols, leg.Vol())
		if t := e.yearsToExpiry(leg.Expiry, asOf); t > 0 && t < nearest {
			nearest = t
		}
	}

	if len(vols) == 0 || math.IsInf(nearest, 1) {
		return 0, 0
	}
	return stat.Mean(vols, nil), nearest
}

func maxMin(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return max, min
}
