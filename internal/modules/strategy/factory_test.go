package strategy

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/options-trader/internal/domain"
)

func TestCreateDispatchesAllTypes(t *testing.T) {
	svc := NewService(zerolog.Nop())

	tests := []struct {
		typ    domain.StrategyType
		params Params
		legs   int
	}{
		{domain.StrategyLongCall, Params{Strike: 100, Expiry: "2026-12-18", Premium: 5, Quantity: 1, IV: 0.25}, 1},
		{domain.StrategyLongPut, Params{Strike: 95, Expiry: "2026-12-18", Premium: 3, Quantity: 1, IV: 0.25}, 1},
		{domain.StrategyNakedCall, Params{Strike: 110, Expiry: "2026-12-18", Premium: 2, Quantity: 1, IV: 0.25}, 1},
		{domain.StrategyNakedPut, Params{Strike: 90, Expiry: "2026-12-18", Premium: 2, Quantity: 1, IV: 0.25}, 1},
		{domain.StrategyCashSecuredPut, Params{Strike: 90, Expiry: "2026-12-18", Premium: 2.5, Quantity: 1, IV: 0.25}, 1},
		{domain.StrategyCoveredCall, Params{StockCost: 95, CallStrike: 105, Expiry: "2026-12-18", CallPremium: 3, Quantity: 1, CallIV: 0.25}, 2},
		{domain.StrategyCollar, Params{StockCost: 100, PutStrike: 90, CallStrike: 110, Expiry: "2026-12-18", PutPremium: 2, CallPremium: 2, Quantity: 1, PutIV: 0.25, CallIV: 0.25}, 3},
		{domain.StrategyBullCallSpread, Params{LongStrike: 100, ShortStrike: 110, Expiry: "2026-12-18", LongPremium: 5, ShortPremium: 2, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyBearPutSpread, Params{LongStrike: 110, ShortStrike: 100, Expiry: "2026-12-18", LongPremium: 8, ShortPremium: 3, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyBullPutSpread, Params{ShortStrike: 110, LongStrike: 100, Expiry: "2026-12-18", ShortPremium: 8, LongPremium: 3, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyBearCallSpread, Params{ShortStrike: 100, LongStrike: 110, Expiry: "2026-12-18", ShortPremium: 5, LongPremium: 2, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyCalendarSpread, Params{OptionType: domain.InstrumentCall, Strike: 100, NearExpiry: "2026-10-16", FarExpiry: "2026-12-18", ShortPremium: 2, LongPremium: 4, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyDiagonalSpread, Params{OptionType: domain.InstrumentCall, LongStrike: 95, ShortStrike: 105, NearExpiry: "2026-10-16", FarExpiry: "2026-12-18", LongPremium: 8, ShortPremium: 2, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyPoorMansCoveredCall, Params{LongStrike: 70, ShortStrike: 105, NearExpiry: "2026-10-16", FarExpiry: "2027-01-15", LongPremium: 32, ShortPremium: 2.5, Quantity: 1, IV: 0.25}, 2},
		{domain.StrategyRatioBackspread, Params{OptionType: domain.InstrumentCall, ShortStrike: 100, LongStrike: 110, Expiry: "2026-12-18", ShortPremium: 6, LongPremium: 2.5, Quantity: 1, Ratio: 2, IV: 0.25}, 2},
		{domain.StrategyStraddle, Params{Strike: 100, Expiry: "2026-12-18", CallPremium: 5, PutPremium: 4, Quantity: 1, CallIV: 0.25, PutIV: 0.28}, 2},
		{domain.StrategyStrangle, Params{PutStrike: 90, CallStrike: 110, Expiry: "2026-12-18", PutPremium: 2, CallPremium: 2, Quantity: 1, PutIV: 0.25, CallIV: 0.25}, 2},
		{domain.StrategyIronCondor, Params{LongPutStrike: 40, ShortPutStrike: 45, ShortCallStrike: 55, LongCallStrike: 60, Expiry: "2026-12-18", LongPutPremium: 0.5, ShortPutPremium: 1.2, ShortCallPrem: 1.1, LongCallPrem: 0.4, Quantity: 1, IV: 0.30}, 4},
		{domain.StrategyButterfly, Params{OptionType: domain.InstrumentCall, LowStrike: 90, MidStrike: 100, HighStrike: 110, Expiry: "2026-12-18", LowPremium: 12, MidPremium: 5, HighPremium: 1.5, Quantity: 1, IV: 0.25}, 3},
		{domain.StrategyDoubleDiagonal, Params{LongPutStrike: 85, ShortPutStrike: 90, ShortCallStrike: 110, LongCallStrike: 115, NearExpiry: "2026-10-16", FarExpiry: "2026-12-18", LongPutPremium: 2, ShortPutPremium: 1.5, ShortCallPrem: 1.4, LongCallPrem: 1.9, Quantity: 1, IV: 0.30}, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			strat, err := svc.Create(tt.typ, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, strat.Type)
			assert.Len(t, strat.Legs, tt.legs)
			assert.NotEmpty(t, strat.ID)
		})
	}
}

func TestCreateUnknownType(t *testing.T) {
	svc := NewService(zerolog.Nop())

	_, err := svc.Create("jade_lizard", Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy type")
}

func TestCreatePropagatesStructuralErrors(t *testing.T) {
	svc := NewService(zerolog.Nop())

	_, err := svc.Create(domain.StrategyBullCallSpread, Params{
		LongStrike: 110, ShortStrike: 100, Expiry: "2026-12-18",
		LongPremium: 5, ShortPremium: 2, Quantity: 1, IV: 0.25,
	})
	require.Error(t, err)

	var structural *domain.StructuralError
	assert.ErrorAs(t, err, &structural)
}

func TestCreateSharedIVFallback(t *testing.T) {
	svc := NewService(zerolog.Nop())

	// A single IV applies to both legs when per-leg values are absent
	strat, err := svc.Create(domain.StrategyBullCallSpread, Params{
		LongStrike: 100, ShortStrike: 110, Expiry: "2026-12-18",
		LongPremium: 5, ShortPremium: 2, Quantity: 1, IV: 0.42,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.42, strat.Legs[0].Volatility)
	assert.Equal(t, 0.42, strat.Legs[1].Volatility)

	// Per-leg values win over the shared one
	strat, err = svc.Create(domain.StrategyBullCallSpread, Params{
		LongStrike: 100, ShortStrike: 110, Expiry: "2026-12-18",
		LongPremium: 5, ShortPremium: 2, Quantity: 1,
		IV: 0.42, LongIV: 0.35, ShortIV: 0.31,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.35, strat.Legs[0].Volatility)
	assert.Equal(t, 0.31, strat.Legs[1].Volatility)
}

func TestCustomStrategy(t *testing.T) {
	svc := NewService(zerolog.Nop())

	strat, err := svc.Create(domain.StrategyCustom, Params{
		Legs: []RawLeg{
			{Instrument: "call", Direction: "long", Strike: fptr(100), Expiry: "2026-12-18", EntryPrice: fptr(5)},
			{Instrument: "put", Direction: "short", Strike: fptr(90), Expiry: "2026-12-18", EntryPrice: fptr(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyCustom, strat.Type)
	assert.Len(t, strat.Legs, 2)

	_, err = svc.Create(domain.StrategyCustom, Params{Legs: nil})
	assert.Error(t, err)
}
