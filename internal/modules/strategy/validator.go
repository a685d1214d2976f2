package strategy

import (
	"github.com/aristath/options-trader/internal/domain"
)

// RawLeg is a loosely typed leg description as received from an external
// caller, before normalization. Pointer fields distinguish "absent" from
// zero.
type RawLeg struct {
	Instrument  string   `json:"instrument"`
	Direction   string   `json:"direction"`
	Strike      *float64 `json:"strike,omitempty"`
	Expiry      string   `json:"expiry,omitempty"`
	EntryPrice  *float64 `json:"entry_price,omitempty"`
	MarketPrice *float64 `json:"market_price,omitempty"`
	Volatility  *float64 `json:"volatility,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	CashSecured bool     `json:"cash_secured,omitempty"`
}

// Normalize converts raw leg descriptions into canonical legs, rejecting any
// leg that is missing a required field or uses an unrecognized instrument or
// direction. Errors name the offending leg index and field.
func Normalize(raw []RawLeg) ([]domain.Leg, error) {
	if len(raw) == 0 {
		return nil, domain.NewStrategyError("at least one leg is required")
	}

	legs := make([]domain.Leg, 0, len(raw))
	for i, r := range raw {
		leg, err := normalizeLeg(i, r)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}

	return legs, nil
}

func normalizeLeg(i int, r RawLeg) (domain.Leg, error) {
	instrument := domain.Instrument(r.Instrument)
	if r.Instrument == "" {
		return domain.Leg{}, domain.NewStructuralError(i, "instrument", "missing required field")
	}
	if !instrument.Valid() {
		return domain.Leg{}, domain.NewStructuralError(i, "instrument",
			"unrecognized value %q, use call, put or stock", r.Instrument)
	}

	direction := domain.Direction(r.Direction)
	if r.Direction == "" {
		return domain.Leg{}, domain.NewStructuralError(i, "direction", "missing required field")
	}
	if !direction.Valid() {
		return domain.Leg{}, domain.NewStructuralError(i, "direction",
			"unrecognized value %q, use long or short", r.Direction)
	}

	leg := domain.Leg{
		Instrument:  instrument,
		Direction:   direction,
		MarketPrice: r.MarketPrice,
		CashSecured: r.CashSecured,
		Quantity:    1,
	}

	if r.EntryPrice != nil {
		if *r.EntryPrice < 0 {
			return domain.Leg{}, domain.NewStructuralError(i, "entry_price",
				"must be non-negative, got %v", *r.EntryPrice)
		}
		leg.EntryPrice = *r.EntryPrice
	}

	if r.MarketPrice != nil && *r.MarketPrice < 0 {
		return domain.Leg{}, domain.NewStructuralError(i, "market_price",
			"must be non-negative, got %v", *r.MarketPrice)
	}

	if r.Quantity != nil {
		if *r.Quantity <= 0 {
			return domain.Leg{}, domain.NewStructuralError(i, "quantity",
				"must be positive, got %d", *r.Quantity)
		}
		leg.Quantity = *r.Quantity
	}

	if instrument.IsOption() {
		if r.Strike == nil {
			return domain.Leg{}, domain.NewStructuralError(i, "strike", "required for option legs")
		}
		if *r.Strike <= 0 {
			return domain.Leg{}, domain.NewStructuralError(i, "strike",
				"must be positive, got %v", *r.Strike)
		}
		leg.Strike = *r.Strike

		if r.Expiry == "" {
			return domain.Leg{}, domain.NewStructuralError(i, "expiry", "required for option legs")
		}
		leg.Expiry = r.Expiry

		leg.Volatility = domain.DefaultVolatility
		if r.Volatility != nil && *r.Volatility > 0 {
			leg.Volatility = *r.Volatility
		}
	}

	return leg, nil
}

// ValidateLegs checks the canonical-leg invariants shared by every strategy
// shape: at least one leg, positive quantities, and strike/expiry/volatility
// present on option legs.
func ValidateLegs(legs []domain.Leg) error {
	if len(legs) == 0 {
		return domain.NewStrategyError("at least one leg is required")
	}

	for i, leg := range legs {
		if !leg.Instrument.Valid() {
			return domain.NewStructuralError(i, "instrument", "unrecognized value %q", leg.Instrument)
		}
		if !leg.Direction.Valid() {
			return domain.NewStructuralError(i, "direction", "unrecognized value %q", leg.Direction)
		}
		if leg.Quantity <= 0 {
			return domain.NewStructuralError(i, "quantity", "must be positive, got %d", leg.Quantity)
		}
		if leg.EntryPrice < 0 {
			return domain.NewStructuralError(i, "entry_price", "must be non-negative, got %v", leg.EntryPrice)
		}

		if leg.Instrument.IsOption() {
			if leg.Strike <= 0 {
				return domain.NewStructuralError(i, "strike", "must be positive, got %v", leg.Strike)
			}
			if leg.Expiry == "" {
				return domain.NewStructuralError(i, "expiry", "required for option legs")
			}
			if leg.Volatility <= 0 {
				return domain.NewStructuralError(i, "volatility", "must be positive, got %v", leg.Volatility)
			}
		}
	}

	return nil
}
