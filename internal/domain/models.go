package domain

import (
	"time"

	"github.com/google/uuid"
)

// Instrument identifies what a leg trades
type Instrument string

const (
	InstrumentCall  Instrument = "call"
	InstrumentPut   Instrument = "put"
	InstrumentStock Instrument = "stock"
)

// IsOption reports whether the instrument is a call or a put
func (i Instrument) IsOption() bool {
	return i == InstrumentCall || i == InstrumentPut
}

// Valid reports whether the instrument is a recognized value
func (i Instrument) Valid() bool {
	return i == InstrumentCall || i == InstrumentPut || i == InstrumentStock
}

// Direction is the sign of a leg's exposure, independent of quantity
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Sign returns +1 for long, -1 for short
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// Valid reports whether the direction is a recognized value
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// ExerciseStyle determines whether early exercise is allowed
type ExerciseStyle string

const (
	ExerciseEuropean ExerciseStyle = "european"
	ExerciseAmerican ExerciseStyle = "american"
)

// PricingModel selects the pricing implementation
type PricingModel string

const (
	ModelBlackScholes PricingModel = "black_scholes"
	ModelBinomial     PricingModel = "binomial"
	ModelMonteCarlo   PricingModel = "monte_carlo"
)

const (
	// ContractMultiplier converts per-share option economics to per-contract
	ContractMultiplier = 100.0

	// DefaultVolatility is used when a leg's implied volatility is unknown
	DefaultVolatility = 0.30

	// MinVolatility is the clamp applied wherever a zero or negative
	// volatility would cause division by zero
	MinVolatility = 1e-4

	// MaxVolatility caps implied volatility solutions (500%)
	MaxVolatility = 5.0
)

// Leg is one position within a strategy. Strike, Expiry and Volatility are
// meaningful only for call/put legs; stock legs carry a raw share count in
// Quantity and are never scaled by the contract multiplier.
type Leg struct {
	Instrument  Instrument `json:"instrument"`
	Direction   Direction  `json:"direction"`
	Strike      float64    `json:"strike,omitempty"`
	Expiry      string     `json:"expiry,omitempty"` // YYYY-MM-DD
	EntryPrice  float64    `json:"entry_price"`
	MarketPrice *float64   `json:"market_price,omitempty"`
	Volatility  float64    `json:"volatility,omitempty"`
	Quantity    int        `json:"quantity"`
	CashSecured bool       `json:"cash_secured,omitempty"` // informational only
}

// CurrentPrice returns the quoted market price, falling back to the entry
// price when no quote is attached.
func (l Leg) CurrentPrice() float64 {
	if l.MarketPrice != nil {
		return *l.MarketPrice
	}
	return l.EntryPrice
}

// Vol returns the leg volatility with the documented defaults applied.
func (l Leg) Vol() float64 {
	if l.Volatility <= 0 {
		return DefaultVolatility
	}
	return l.Volatility
}

// Multiplier returns the scaling factor converting per-share values to
// per-position values for this leg.
func (l Leg) Multiplier() float64 {
	if l.Instrument.IsOption() {
		return ContractMultiplier
	}
	return 1
}

// IntrinsicValue returns the exercise value of the leg at the given
// underlying price, before premium and direction.
func (l Leg) IntrinsicValue(underlying float64) float64 {
	switch l.Instrument {
	case InstrumentCall:
		if underlying > l.Strike {
			return underlying - l.Strike
		}
		return 0
	case InstrumentPut:
		if underlying < l.Strike {
			return l.Strike - underlying
		}
		return 0
	default:
		return underlying - l.EntryPrice
	}
}

// StrategyType names a recognized strategy shape
type StrategyType string

const (
	StrategyLongCall            StrategyType = "long_call"
	StrategyLongPut             StrategyType = "long_put"
	StrategyCoveredCall         StrategyType = "covered_call"
	StrategyCashSecuredPut      StrategyType = "cash_secured_put"
	StrategyNakedCall           StrategyType = "naked_call"
	StrategyNakedPut            StrategyType = "naked_put"
	StrategyBullCallSpread      StrategyType = "bull_call_spread"
	StrategyBearPutSpread       StrategyType = "bear_put_spread"
	StrategyBullPutSpread       StrategyType = "bull_put_spread"
	StrategyBearCallSpread      StrategyType = "bear_call_spread"
	StrategyCalendarSpread      StrategyType = "calendar_spread"
	StrategyPoorMansCoveredCall StrategyType = "poor_mans_covered_call"
	StrategyRatioBackspread     StrategyType = "ratio_backspread"
	StrategyIronCondor          StrategyType = "iron_condor"
	StrategyButterfly           StrategyType = "butterfly"
	StrategyStraddle            StrategyType = "straddle"
	StrategyStrangle            StrategyType = "strangle"
	StrategyCollar              StrategyType = "collar"
	StrategyDiagonalSpread      StrategyType = "diagonal_spread"
	StrategyDoubleDiagonal      StrategyType = "double_diagonal_spread"
	StrategyCustom              StrategyType = "custom"
)

// Strategy is an ordered collection of legs. Strategies are value objects:
// once built they are never mutated, so payoff curves computed from an older
// snapshot stay valid for what-if comparison against a newer one.
type Strategy struct {
	ID        string       `json:"id"`
	Type      StrategyType `json:"type"`
	Legs      []Leg        `json:"legs"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewStrategy builds a strategy value with a fresh identity. Leg order is
// preserved for display; valuation does not depend on it.
func NewStrategy(t StrategyType, legs []Leg) Strategy {
	return Strategy{
		ID:        uuid.New().String(),
		Type:      t,
		Legs:      legs,
		CreatedAt: time.Now().UTC(),
	}
}

// WithLeg returns a copy of the strategy with one extra leg and a new
// identity, leaving the receiver untouched.
func (s Strategy) WithLeg(leg Leg) Strategy {
	legs := make([]Leg, len(s.Legs), len(s.Legs)+1)
	copy(legs, s.Legs)
	return NewStrategy(s.Type, append(legs, leg))
}

// PricingRequest is the parameter tuple consumed by every pricing model
type PricingRequest struct {
	Instrument  Instrument    `json:"instrument"`
	Spot        float64       `json:"spot"`
	Strike      float64       `json:"strike"`
	TimeToYears float64       `json:"time_to_expiry_years"`
	RiskFree    float64       `json:"risk_free_rate"`
	Volatility  float64       `json:"volatility"`
	Style       ExerciseStyle `json:"exercise_style,omitempty"` // binomial only
	Steps       int           `json:"steps,omitempty"`          // binomial, monte carlo
	Paths       int           `json:"paths,omitempty"`          // monte carlo only
}

// Greeks holds the sensitivity vector for an option or a whole strategy.
// Theta is per calendar day; vega and rho are per one percentage point.
type Greeks struct {
	Delta    float64 `json:"delta"`
	Gamma    float64 `json:"gamma"`
	Theta    float64 `json:"theta"`
	Vega     float64 `json:"vega"`
	Rho      float64 `json:"rho"`
	Degraded bool    `json:"degraded,omitempty"` // neutral fallback was used
}

// CurvePoint is one sample of a payoff or valuation curve
type CurvePoint struct {
	Price float64 `json:"price"`
	Value float64 `json:"value"`
}

// OptionQuote is one row of an option chain as delivered by the market data
// collaborator.
type OptionQuote struct {
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"last_price"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	ImpliedVolatility float64 `json:"implied_volatility"`
}

// OptionChain groups quotes by side for one expiry
type OptionChain struct {
	Symbol string        `json:"symbol"`
	Expiry string        `json:"expiry"`
	Spot   float64       `json:"spot"`
	Calls  []OptionQuote `json:"calls"`
	Puts   []OptionQuote `json:"puts"`
}
