package payoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/options-trader/internal/domain"
	"github.com/aristath/options-trader/internal/modules/strategy"
)

func TestAnalyzeBullCallSpread(t *testing.T) {
	e := newEngine()
	strat := mustBuild(strategy.BullCallSpread(100, 110, expiryInDays(90),
		strategy.Premium{Entry: 5}, strategy.Premium{Entry: 2}, 1, 0.25, 0.25))

	m := e.Analyze(strat, 100, time.Now().UTC(), 0.05)

	assert.False(t, m.MaxProfitUnbounded)
	assert.False(t, m.MaxLossUnbounded)
	assert.InDelta(t, 700, m.MaxProfit, 1e-6)
	assert.InDelta(t, -300, m.MaxLoss, 1e-6)
	assert.InDelta(t, 700.0/300.0, m.RiskReward, 1e-6)
	assert.InDelta(t, -300, m.NetPremium, 1e-6)

	require.Len(t, m.Breakevens, 1)
	assert.InDelta(t, 103, m.Breakevens[0], 0.5)

	// Spot sits below the breakeven: the position expires at a loss there
	assert.InDelta(t, -300, m.ProfitAtCurrent, 1e-6)
}

func TestAnalyzeLongCallUnboundedProfit(t *testing.T) {
	e := newEngine()
	strat := mustBuild(strategy.LongCall(100, expiryInDays(90), strategy.Premium{Entry: 5}, 1, 0.25))

	m := e.Analyze(strat, 100, time.Now().UTC(), 0.05)

	assert.True(t, m.MaxProfitUnbounded)
	assert.False(t, m.MaxLossUnbounded)
	assert.InDelta(t, -500, m.MaxLoss, 1e-6)
	assert.Zero(t, m.RiskReward, "no ratio when one side is unbounded")
}

func TestAnalyzeShortCallUnboundedLoss(t *testing.T) {
	e := newEngine()
	strat := mustBuild(strategy.NakedCall(100, expiryInDays(90), strategy.Premium{Entry: 5}, 1, 0.25))

	m := e.Analyze(strat, 100, time.Now().UTC(), 0.05)

	assert.False(t, m.MaxProfitUnbounded)
	assert.True(t, m.MaxLossUnbounded)
	assert.InDelta(t, 500, m.MaxProfit, 1e-6)
	assert.InDelta(t, 500, m.NetPremium, 1e-6)
}

func TestAggregateGreeksLongCall(t *testing.T) {
	e := newEngine()
	strat := mustBuild(strategy.LongCall(100, expiryInDays(365), strategy.Premium{Entry: 5}, 1, 0.2))

	g := e.AggregateGreeks(strat, 100, time.Now().UTC(), 0.05)

	// 100 shares worth of ATM call delta, roughly 0.64 per share
	assert.InDelta(t, 63.7, g.Delta, 1.0)
	assert.Greater(t, g.Gamma, 0.0)
	assert.Less(t, g.Theta, 0.0)
	assert.Greater(t, g.Vega, 0.0)
	assert.False(t, g.Degraded)
}

func TestAggregateGreeksShortFlipsSign(t *testing.T) {
	e := newEngine()
	long := mustBuild(strategy.LongPut(100, expiryInDays(365), strategy.Premium{Entry: 4}, 1, 0.2))
	short := mustBuild(strategy.NakedPut(100, expiryInDays(365), strategy.Premium{Entry: 4}, 1, 0.2))

	asOf := time.Now().UTC()
	gl := e.AggregateGreeks(long, 100, asOf, 0.05)
	gs := e.AggregateGreeks(short, 100, asOf, 0.05)

	assert.InDelta(t, -gl.Delta, gs.Delta, 1e-9)
	assert.InDelta(t, -gl.Vega, gs.Vega, 1e-9)
}

func TestAggregateGreeksStockLeg(t *testing.T) {
	e := newEngine()
	strat := domain.NewStrategy(domain.StrategyCustom, []domain.Leg{
		{Instrument: domain.InstrumentStock, Direction: domain.DirectionLong, EntryPrice: 95, Quantity: 300},
	})

	g := e.AggregateGreeks(strat, 100, time.Now().UTC(), 0.05)

	assert.InDelta(t, 300, g.Delta, 1e-9)
	assert.Zero(t, g.Gamma)
	assert.Zero(t, g.Vega)
}

func TestProbabilityOfProfitStraddleSplitsTails(t *testing.T) {
	e := newEngine()
	strat := mustBuild(strategy.Straddle(100, expiryInDays(90),
		strategy.Premium{Entry: 5}, strategy.Premium{Entry: 4}, 1, 0.25, 0.25))

	p := e.ProbabilityOfProfit(strat, 100, time.Now().UTC(), 0.05)

	// Profit needs a move past either breakeven, so well under half
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 0.5)
}

func TestProbabilityOfProfitShortPutAboveHalf(t *testing.T) {
	e := newEngine()
	strat := mustBuild(strategy.NakedPut(90, expiryInDays(90), strategy.Premium{Entry: 2}, 1, 0.25))

	p := e.ProbabilityOfProfit(strat, 100, time.Now().UTC(), 0.05)

	// OTM short put keeps its credit unless spot falls past 88
	assert.Greater(t, p, 0.5)
	assert.LessOrEqual(t, p, 1.0)
}

func TestProbabilityOfProfitDegeneratePointEstimate(t *testing.T) {
	e := newEngine()

	// Stock only: no option legs, no horizon, point estimate at spot
	winner := domain.NewStrategy(domain.StrategyCustom, []domain.Leg{
		{Instrument: domain.InstrumentStock, Direction: domain.DirectionLong, EntryPrice: 90, Quantity: 100},
	})
	loser := domain.NewStrategy(domain.StrategyCustom, []domain.Leg{
		{Instrument: domain.InstrumentStock, Direction: domain.DirectionLong, EntryPrice: 110, Quantity: 100},
	})

	asOf := time.Now().UTC()
	assert.Equal(t, 1.0, e.ProbabilityOfProfit(winner, 100, asOf, 0.05))
	assert.Equal(t, 0.0, e.ProbabilityOfProfit(loser, 100, asOf, 0.05))
}

func TestMaxMin(t *testing.T) {
	max, min := maxMin([]float64{-3, 7, 0, -12, 5})
	assert.Equal(t, 7.0, max)
	assert.Equal(t, -12.0, min)

	max, min = maxMin(nil)
	assert.Zero(t, max)
	assert.Zero(t, min)
}
