package strategy

import (
	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/domain"
)

// Params is the union of every builder's inputs, mirroring the keyword
// arguments a caller supplies per strategy type. Unused fields are ignored
// by the selected builder.
type Params struct {
	Strike          float64           `json:"strike,omitempty"`
	LongStrike      float64           `json:"long_strike,omitempty"`
	ShortStrike     float64           `json:"short_strike,omitempty"`
	PutStrike       float64           `json:"put_strike,omitempty"`
	CallStrike      float64           `json:"call_strike,omitempty"`
	LowStrike       float64           `json:"low_strike,omitempty"`
	MidStrike       float64           `json:"mid_strike,omitempty"`
	HighStrike      float64           `json:"high_strike,omitempty"`
	LongPutStrike   float64           `json:"long_put_strike,omitempty"`
	ShortPutStrike  float64           `json:"short_put_strike,omitempty"`
	ShortCallStrike float64           `json:"short_call_strike,omitempty"`
	LongCallStrike  float64           `json:"long_call_strike,omitempty"`
	Expiry          string            `json:"expiry,omitempty"`
	NearExpiry      string            `json:"near_expiry,omitempty"`
	FarExpiry       string            `json:"far_expiry,omitempty"`
	OptionType      domain.Instrument `json:"option_type,omitempty"` // calendar, diagonal, butterfly, backspread
	Premium         float64           `json:"premium,omitempty"`
	MarketPremium   *float64          `json:"market_premium,omitempty"`
	LongPremium     float64           `json:"long_premium,omitempty"`
	ShortPremium    float64           `json:"short_premium,omitempty"`
	PutPremium      float64           `json:"put_premium,omitempty"`
	CallPremium     float64           `json:"call_premium,omitempty"`
	LowPremium      float64           `json:"low_premium,omitempty"`
	MidPremium      float64           `json:"mid_premium,omitempty"`
	HighPremium     float64           `json:"high_premium,omitempty"`
	LongPutPremium  float64           `json:"long_put_premium,omitempty"`
	ShortPutPremium float64           `json:"short_put_premium,omitempty"`
	ShortCallPrem   float64           `json:"short_call_premium,omitempty"`
	LongCallPrem    float64           `json:"long_call_premium,omitempty"`
	StockCost       float64           `json:"stock_cost,omitempty"`
	StockMarket     *float64          `json:"stock_market,omitempty"`
	Quantity        int               `json:"quantity,omitempty"`
	Ratio           int               `json:"ratio,omitempty"`
	IV              float64           `json:"iv,omitempty"`
	LongIV          float64           `json:"long_iv,omitempty"`
	ShortIV         float64           `json:"short_iv,omitempty"`
	PutIV           float64           `json:"put_iv,omitempty"`
	CallIV          float64           `json:"call_iv,omitempty"`
	Legs            []RawLeg          `json:"legs,omitempty"` // custom only
}

// Service creates strategies by type and validates custom leg lists.
type Service struct {
	log zerolog.Logger
}

// NewService creates a strategy service.
func NewService(log zerolog.Logger) *Service {
	if log.GetLevel() == zerolog.Disabled {
		log = zerolog.Nop()
	}
	return &Service{
		log: log.With().Str("component", "strategy").Logger(),
	}
}

// Create builds a strategy of the named type from its parameters. Unknown
// types and violated shape invariants surface as structural errors.
func (s *Service) Create(t domain.StrategyType, p Params) (domain.Strategy, error) {
	strat, err := s.create(t, p)
	if err != nil {
		s.log.Error().Err(err).Str("type", string(t)).Msg("Failed to create strategy")
		return domain.Strategy{}, err
	}

	s.log.Info().
		Str("type", string(t)).
		Str("id", strat.ID).
		Int("legs", len(strat.Legs)).
		Msg("Created strategy")

	return strat, nil
}

func (s *Service) create(t domain.StrategyType, p Params) (domain.Strategy, error) {
	longIV := p.LongIV
	if longIV == 0 {
		longIV = p.IV
	}
	shortIV := p.ShortIV
	if shortIV == 0 {
		shortIV = p.IV
	}

	switch t {
	case domain.StrategyLongCall:
		return LongCall(p.Strike, p.Expiry, Premium{p.Premium, p.MarketPremium}, p.Quantity, p.IV)

	case domain.StrategyLongPut:
		return LongPut(p.Strike, p.Expiry, Premium{p.Premium, p.MarketPremium}, p.Quantity, p.IV)

	case domain.StrategyNakedCall:
		return NakedCall(p.Strike, p.Expiry, Premium{p.Premium, p.MarketPremium}, p.Quantity, p.IV)

	case domain.StrategyNakedPut:
		return NakedPut(p.Strike, p.Expiry, Premium{p.Premium, p.MarketPremium}, p.Quantity, p.IV)

	case domain.StrategyCashSecuredPut:
		return CashSecuredPut(p.Strike, p.Expiry, Premium{p.Premium, p.MarketPremium}, p.Quantity, p.IV)

	case domain.StrategyCoveredCall:
		return CoveredCall(p.StockCost, p.StockMarket, p.CallStrike, p.Expiry,
			Premium{Entry: p.CallPremium}, p.Quantity, p.CallIV)

	case domain.StrategyCollar:
		return Collar(p.StockCost, p.StockMarket, p.PutStrike, p.CallStrike, p.Expiry,
			Premium{Entry: p.PutPremium}, Premium{Entry: p.CallPremium}, p.Quantity, p.PutIV, p.CallIV)

	case domain.StrategyBullCallSpread:
		return BullCallSpread(p.LongStrike, p.ShortStrike, p.Expiry,
			Premium{Entry: p.LongPremium}, Premium{Entry: p.ShortPremium}, p.Quantity, longIV, shortIV)

	case domain.StrategyBearPutSpread:
		return BearPutSpread(p.LongStrike, p.ShortStrike, p.Expiry,
			Premium{Entry: p.LongPremium}, Premium{Entry: p.ShortPremium}, p.Quantity, longIV, shortIV)

	case domain.StrategyBullPutSpread:
		return BullPutSpread(p.ShortStrike, p.LongStrike, p.Expiry,
			Premium{Entry: p.ShortPremium}, Premium{Entry: p.LongPremium}, p.Quantity, shortIV, longIV)

	case domain.StrategyBearCallSpread:
		return BearCallSpread(p.ShortStrike, p.LongStrike, p.Expiry,
			Premium{Entry: p.ShortPremium}, Premium{Entry: p.LongPremium}, p.Quantity, shortIV, longIV)

	case domain.StrategyCalendarSpread:
		return CalendarSpread(p.OptionType, p.Strike, p.NearExpiry, p.FarExpiry,
			Premium{Entry: p.ShortPremium}, Premium{Entry: p.LongPremium}, p.Quantity, shortIV, longIV)

	case domain.StrategyDiagonalSpread:
		return DiagonalSpread(p.OptionType, p.LongStrike, p.ShortStrike, p.FarExpiry, p.NearExpiry,
			Premium{Entry: p.LongPremium}, Premium{Entry: p.ShortPremium}, p.Quantity, longIV, shortIV)

	case domain.StrategyPoorMansCoveredCall:
		return PoorMansCoveredCall(p.LongStrike, p.ShortStrike, p.FarExpiry, p.NearExpiry,
			Premium{Entry: p.LongPremium}, Premium{Entry: p.ShortPremium}, p.Quantity, longIV, shortIV)

	case domain.StrategyRatioBackspread:
		return RatioBackspread(p.OptionType, p.ShortStrike, p.LongStrike, p.Expiry,
			Premium{Entry: p.ShortPremium}, Premium{Entry: p.LongPremium}, p.Quantity, p.Ratio, shortIV, longIV)

	case domain.StrategyStraddle:
		return Straddle(p.Strike, p.Expiry,
			Premium{Entry: p.CallPremium}, Premium{Entry: p.PutPremium}, p.Quantity, p.CallIV, p.PutIV)

	case domain.StrategyStrangle:
		return Strangle(p.PutStrike, p.CallStrike, p.Expiry,
			Premium{Entry: p.PutPremium}, Premium{Entry: p.CallPremium}, p.Quantity, p.PutIV, p.CallIV)

	case domain.StrategyIronCondor:
		return IronCondor(IronCondorParams{
			LongPutStrike:   p.LongPutStrike,
			ShortPutStrike:  p.ShortPutStrike,
			ShortCallStrike: p.ShortCallStrike,
			LongCallStrike:  p.LongCallStrike,
			Expiry:          p.Expiry,
			LongPutPrem:     Premium{Entry: p.LongPutPremium},
			ShortPutPrem:    Premium{Entry: p.ShortPutPremium},
			ShortCallPrem:   Premium{Entry: p.ShortCallPrem},
			LongCallPrem:    Premium{Entry: p.LongCallPrem},
			Quantity:        p.Quantity,
			IV:              p.IV,
		})

	case domain.StrategyButterfly:
		return Butterfly(p.OptionType, p.LowStrike, p.MidStrike, p.HighStrike, p.Expiry,
			Premium{Entry: p.LowPremium}, Premium{Entry: p.MidPremium}, Premium{Entry: p.HighPremium},
			p.Quantity, p.IV)

	case domain.StrategyDoubleDiagonal:
		return DoubleDiagonal(DoubleDiagonalParams{
			PutLongStrike:   p.LongPutStrike,
			PutShortStrike:  p.ShortPutStrike,
			CallShortStrike: p.ShortCallStrike,
			CallLongStrike:  p.LongCallStrike,
			ShortExpiry:     p.NearExpiry,
			LongExpiry:      p.FarExpiry,
			PutLongPrem:     Premium{Entry: p.LongPutPremium},
			PutShortPrem:    Premium{Entry: p.ShortPutPremium},
			CallShortPrem:   Premium{Entry: p.ShortCallPrem},
			CallLongPrem:    Premium{Entry: p.LongCallPrem},
			Quantity:        p.Quantity,
			IV:              p.IV,
		})

	case domain.StrategyCustom:
		return s.Custom(p.Legs)

	default:
		return domain.Strategy{}, domain.NewStrategyError("unknown strategy type %q", t)
	}
}

// Custom normalizes user-defined legs into a custom strategy.
func (s *Service) Custom(raw []RawLeg) (domain.Strategy, error) {
	legs, err := Normalize(raw)
	if err != nil {
		return domain.Strategy{}, err
	}
	return domain.NewStrategy(domain.StrategyCustom, legs), nil
}

// NetPremium returns the signed net premium of a strategy at entry: positive
// means the position was opened for a credit, negative for a debit. Option
// premiums are scaled by the contract multiplier, stock legs by share count.
func NetPremium(strat domain.Strategy) float64 {
	net := 0.0
	for _, leg := range strat.Legs {
		effect := leg.EntryPrice * float64(leg.Quantity) * leg.Multiplier()
		// A long leg pays premium out, a short leg collects it
		net -= leg.Direction.Sign() * effect
	}
	return net
}
