// Package strategy builds and validates multi-leg option strategies.
// Builders enforce the strike and expiry orderings of each named shape at
// construction time: a violated ordering is a structural error, never a
// silent reorder, because strike order conveys which leg is the protection
// and which is the written side.
package strategy

import (
	"github.com/aristath/options-trader/internal/domain"
)

// Premium carries the entry premium of a leg and, optionally, its current
// quoted price. A nil Market falls back to the entry premium.
type Premium struct {
	Entry  float64
	Market *float64
}

func normQty(qty int) int {
	if qty <= 0 {
		return 1
	}
	return qty
}

func normIV(iv float64) float64 {
	if iv <= 0 {
		return domain.DefaultVolatility
	}
	return iv
}

func optionLeg(instrument domain.Instrument, direction domain.Direction, strike float64, expiry string, prem Premium, qty int, iv float64) domain.Leg {
	return domain.Leg{
		Instrument:  instrument,
		Direction:   direction,
		Strike:      strike,
		Expiry:      expiry,
		EntryPrice:  prem.Entry,
		MarketPrice: prem.Market,
		Volatility:  normIV(iv),
		Quantity:    normQty(qty),
	}
}

func stockLeg(direction domain.Direction, costBasis float64, market *float64, shares int) domain.Leg {
	return domain.Leg{
		Instrument:  domain.InstrumentStock,
		Direction:   direction,
		EntryPrice:  costBasis,
		MarketPrice: market,
		Quantity:    normQty(shares),
	}
}

// LongCall buys a call, profiting from a price increase.
func LongCall(strike float64, expiry string, prem Premium, qty int, iv float64) (domain.Strategy, error) {
	legs := []domain.Leg{
		optionLeg(domain.InstrumentCall, domain.DirectionLong, strike, expiry, prem, qty, iv),
	}
	return finish(domain.StrategyLongCall, legs)
}

// LongPut buys a put, profiting from a price decrease.
func LongPut(strike float64, expiry string, prem Premium, qty int, iv float64) (domain.Strategy, error) {
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionLong, strike, expiry, prem, qty, iv),
	}
	return finish(domain.StrategyLongPut, legs)
}

// NakedCall writes a call without owning the underlying.
func NakedCall(strike float64, expiry string, prem Premium, qty int, iv float64) (domain.Strategy, error) {
	legs := []domain.Leg{
		optionLeg(domain.InstrumentCall, domain.DirectionShort, strike, expiry, prem, qty, iv),
	}
	return finish(domain.StrategyNakedCall, legs)
}

// NakedPut writes a put without setting cash aside.
func NakedPut(strike float64, expiry string, prem Premium, qty int, iv float64) (domain.Strategy, error) {
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionShort, strike, expiry, prem, qty, iv),
	}
	return finish(domain.StrategyNakedPut, legs)
}

// CashSecuredPut writes a put with cash reserved for assignment. The flag is
// informational metadata; no pricing or payoff path consumes it.
func CashSecuredPut(strike float64, expiry string, prem Premium, qty int, iv float64) (domain.Strategy, error) {
	leg := optionLeg(domain.InstrumentPut, domain.DirectionShort, strike, expiry, prem, qty, iv)
	leg.CashSecured = true
	return finish(domain.StrategyCashSecuredPut, []domain.Leg{leg})
}

// CoveredCall owns the stock and writes a call against it. Each contract
// covers one hundred shares.
func CoveredCall(stockCost float64, stockMarket *float64, callStrike float64, expiry string, callPrem Premium, contracts int, iv float64) (domain.Strategy, error) {
	contracts = normQty(contracts)
	legs := []domain.Leg{
		stockLeg(domain.DirectionLong, stockCost, stockMarket, 100*contracts),
		optionLeg(domain.InstrumentCall, domain.DirectionShort, callStrike, expiry, callPrem, contracts, iv),
	}
	return finish(domain.StrategyCoveredCall, legs)
}

// Collar owns the stock, buys a protective put and writes a covered call.
func Collar(stockCost float64, stockMarket *float64, putStrike, callStrike float64, expiry string, putPrem, callPrem Premium, contracts int, putIV, callIV float64) (domain.Strategy, error) {
	if putStrike >= callStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"collar put strike %v must be below call strike %v", putStrike, callStrike)
	}
	contracts = normQty(contracts)
	legs := []domain.Leg{
		stockLeg(domain.DirectionLong, stockCost, stockMarket, 100*contracts),
		optionLeg(domain.InstrumentPut, domain.DirectionLong, putStrike, expiry, putPrem, contracts, putIV),
		optionLeg(domain.InstrumentCall, domain.DirectionShort, callStrike, expiry, callPrem, contracts, callIV),
	}
	return finish(domain.StrategyCollar, legs)
}

// BullCallSpread buys a call at the lower strike and writes one at the
// higher strike. Limited risk, limited reward, bullish outlook.
func BullCallSpread(longStrike, shortStrike float64, expiry string, longPrem, shortPrem Premium, qty int, longIV, shortIV float64) (domain.Strategy, error) {
	if longStrike >= shortStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"bull call spread requires long strike %v below short strike %v", longStrike, shortStrike)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentCall, domain.DirectionLong, longStrike, expiry, longPrem, qty, longIV),
		optionLeg(domain.InstrumentCall, domain.DirectionShort, shortStrike, expiry, shortPrem, qty, shortIV),
	}
	return finish(domain.StrategyBullCallSpread, legs)
}

// BearPutSpread buys a put at the higher strike and writes one at the
// lower strike.
func BearPutSpread(longStrike, shortStrike float64, expiry string, longPrem, shortPrem Premium, qty int, longIV, shortIV float64) (domain.Strategy, error) {
	if longStrike <= shortStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"bear put spread requires long strike %v above short strike %v", longStrike, shortStrike)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionLong, longStrike, expiry, longPrem, qty, longIV),
		optionLeg(domain.InstrumentPut, domain.DirectionShort, shortStrike, expiry, shortPrem, qty, shortIV),
	}
	return finish(domain.StrategyBearPutSpread, legs)
}

// BullPutSpread writes a put at the higher strike and buys one at the
// lower strike for protection. Built for a net credit.
func BullPutSpread(shortStrike, longStrike float64, expiry string, shortPrem, longPrem Premium, qty int, shortIV, longIV float64) (domain.Strategy, error) {
	if shortStrike <= longStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"bull put spread requires short strike %v above long strike %v", shortStrike, longStrike)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionShort, shortStrike, expiry, shortPrem, qty, shortIV),
		optionLeg(domain.InstrumentPut, domain.DirectionLong, longStrike, expiry, longPrem, qty, longIV),
	}
	return finish(domain.StrategyBullPutSpread, legs)
}

// BearCallSpread writes a call at the lower strike and buys one at the
// higher strike for protection.
func BearCallSpread(shortStrike, longStrike float64, expiry string, shortPrem, longPrem Premium, qty int, shortIV, longIV float64) (domain.Strategy, error) {
	if shortStrike >= longStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"bear call spread requires short strike %v below long strike %v", shortStrike, longStrike)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentCall, domain.DirectionShort, shortStrike, expiry, shortPrem, qty, shortIV),
		optionLeg(domain.InstrumentCall, domain.DirectionLong, longStrike, expiry, longPrem, qty, longIV),
	}
	return finish(domain.StrategyBearCallSpread, legs)
}

// CalendarSpread writes a near-dated option and buys a far-dated one at the
// same strike.
func CalendarSpread(instrument domain.Instrument, strike float64, nearExpiry, farExpiry string, nearPrem, farPrem Premium, qty int, nearIV, farIV float64) (domain.Strategy, error) {
	if !instrument.IsOption() {
		return domain.Strategy{}, domain.NewStrategyError(
			"calendar spread instrument must be call or put, got %q", instrument)
	}
	if nearExpiry >= farExpiry {
		return domain.Strategy{}, domain.NewStrategyError(
			"calendar spread requires near expiry %s before far expiry %s", nearExpiry, farExpiry)
	}
	legs := []domain.Leg{
		optionLeg(instrument, domain.DirectionShort, strike, nearExpiry, nearPrem, qty, nearIV),
		optionLeg(instrument, domain.DirectionLong, strike, farExpiry, farPrem, qty, farIV),
	}
	return finish(domain.StrategyCalendarSpread, legs)
}

// DiagonalSpread buys a far-dated option and writes a near-dated one at a
// different strike.
func DiagonalSpread(instrument domain.Instrument, longStrike, shortStrike float64, longExpiry, shortExpiry string, longPrem, shortPrem Premium, qty int, longIV, shortIV float64) (domain.Strategy, error) {
	if !instrument.IsOption() {
		return domain.Strategy{}, domain.NewStrategyError(
			"diagonal spread instrument must be call or put, got %q", instrument)
	}
	if shortExpiry >= longExpiry {
		return domain.Strategy{}, domain.NewStrategyError(
			"diagonal spread requires short expiry %s before long expiry %s", shortExpiry, longExpiry)
	}
	legs := []domain.Leg{
		optionLeg(instrument, domain.DirectionLong, longStrike, longExpiry, longPrem, qty, longIV),
		optionLeg(instrument, domain.DirectionShort, shortStrike, shortExpiry, shortPrem, qty, shortIV),
	}
	return finish(domain.StrategyDiagonalSpread, legs)
}

// PoorMansCoveredCall buys a deep ITM far-dated call as a stock substitute
// and writes a near-dated call against it.
func PoorMansCoveredCall(longStrike, shortStrike float64, longExpiry, shortExpiry string, longPrem, shortPrem Premium, qty int, longIV, shortIV float64) (domain.Strategy, error) {
	if longStrike >= shortStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"poor man's covered call requires long strike %v below short strike %v", longStrike, shortStrike)
	}
	if shortExpiry >= longExpiry {
		return domain.Strategy{}, domain.NewStrategyError(
			"poor man's covered call requires short expiry %s before long expiry %s", shortExpiry, longExpiry)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentCall, domain.DirectionLong, longStrike, longExpiry, longPrem, qty, longIV),
		optionLeg(domain.InstrumentCall, domain.DirectionShort, shortStrike, shortExpiry, shortPrem, qty, shortIV),
	}
	return finish(domain.StrategyPoorMansCoveredCall, legs)
}

// RatioBackspread writes qty options at one strike and buys ratio*qty at
// another. The long/short count ratio must be at least 2.
func RatioBackspread(instrument domain.Instrument, shortStrike, longStrike float64, expiry string, shortPrem, longPrem Premium, qty, ratio int, shortIV, longIV float64) (domain.Strategy, error) {
	if !instrument.IsOption() {
		return domain.Strategy{}, domain.NewStrategyError(
			"ratio backspread instrument must be call or put, got %q", instrument)
	}
	if ratio < 2 {
		return domain.Strategy{}, domain.NewStrategyError(
			"ratio backspread requires a ratio of at least 2, got %d", ratio)
	}
	if instrument == domain.InstrumentCall && shortStrike >= longStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"call ratio backspread requires short strike %v below long strike %v", shortStrike, longStrike)
	}
	if instrument == domain.InstrumentPut && shortStrike <= longStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"put ratio backspread requires short strike %v above long strike %v", shortStrike, longStrike)
	}
	qty = normQty(qty)
	legs := []domain.Leg{
		optionLeg(instrument, domain.DirectionShort, shortStrike, expiry, shortPrem, qty, shortIV),
		optionLeg(instrument, domain.DirectionLong, longStrike, expiry, longPrem, qty*ratio, longIV),
	}
	return finish(domain.StrategyRatioBackspread, legs)
}

// Straddle buys a call and a put at the same strike and expiry.
func Straddle(strike float64, expiry string, callPrem, putPrem Premium, qty int, callIV, putIV float64) (domain.Strategy, error) {
	legs := []domain.Leg{
		optionLeg(domain.InstrumentCall, domain.DirectionLong, strike, expiry, callPrem, qty, callIV),
		optionLeg(domain.InstrumentPut, domain.DirectionLong, strike, expiry, putPrem, qty, putIV),
	}
	return finish(domain.StrategyStraddle, legs)
}

// Strangle buys an OTM put below and an OTM call above the spot.
func Strangle(putStrike, callStrike float64, expiry string, putPrem, callPrem Premium, qty int, putIV, callIV float64) (domain.Strategy, error) {
	if putStrike >= callStrike {
		return domain.Strategy{}, domain.NewStrategyError(
			"strangle requires put strike %v below call strike %v", putStrike, callStrike)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionLong, putStrike, expiry, putPrem, qty, putIV),
		optionLeg(domain.InstrumentCall, domain.DirectionLong, callStrike, expiry, callPrem, qty, callIV),
	}
	return finish(domain.StrategyStrangle, legs)
}

// IronCondorParams names the four strikes and premiums of an iron condor.
type IronCondorParams struct {
	LongPutStrike   float64
	ShortPutStrike  float64
	ShortCallStrike float64
	LongCallStrike  float64
	Expiry          string
	LongPutPrem     Premium
	ShortPutPrem    Premium
	ShortCallPrem   Premium
	LongCallPrem    Premium
	Quantity        int
	IV              float64
}

// IronCondor writes an OTM put spread below and an OTM call spread above,
// built for a net credit. Strikes must satisfy
// long put < short put < short call < long call.
func IronCondor(p IronCondorParams) (domain.Strategy, error) {
	ordered := p.LongPutStrike < p.ShortPutStrike &&
		p.ShortPutStrike < p.ShortCallStrike &&
		p.ShortCallStrike < p.LongCallStrike
	if !ordered {
		return domain.Strategy{}, domain.NewStrategyError(
			"iron condor strike order must be long put < short put < short call < long call")
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionLong, p.LongPutStrike, p.Expiry, p.LongPutPrem, p.Quantity, p.IV),
		optionLeg(domain.InstrumentPut, domain.DirectionShort, p.ShortPutStrike, p.Expiry, p.ShortPutPrem, p.Quantity, p.IV),
		optionLeg(domain.InstrumentCall, domain.DirectionShort, p.ShortCallStrike, p.Expiry, p.ShortCallPrem, p.Quantity, p.IV),
		optionLeg(domain.InstrumentCall, domain.DirectionLong, p.LongCallStrike, p.Expiry, p.LongCallPrem, p.Quantity, p.IV),
	}
	return finish(domain.StrategyIronCondor, legs)
}

// Butterfly buys the wings and writes twice the body, all one side.
// Strikes must satisfy low < mid < high.
func Butterfly(instrument domain.Instrument, lowStrike, midStrike, highStrike float64, expiry string, lowPrem, midPrem, highPrem Premium, qty int, iv float64) (domain.Strategy, error) {
	if !instrument.IsOption() {
		return domain.Strategy{}, domain.NewStrategyError(
			"butterfly instrument must be call or put, got %q", instrument)
	}
	if !(lowStrike < midStrike && midStrike < highStrike) {
		return domain.Strategy{}, domain.NewStrategyError(
			"butterfly strikes must be in order: low < mid < high")
	}
	qty = normQty(qty)
	legs := []domain.Leg{
		optionLeg(instrument, domain.DirectionLong, lowStrike, expiry, lowPrem, qty, iv),
		optionLeg(instrument, domain.DirectionShort, midStrike, expiry, midPrem, 2*qty, iv),
		optionLeg(instrument, domain.DirectionLong, highStrike, expiry, highPrem, qty, iv),
	}
	return finish(domain.StrategyButterfly, legs)
}

// DoubleDiagonalParams names the strikes, expiries and premiums of a double
// diagonal spread.
type DoubleDiagonalParams struct {
	PutLongStrike   float64
	PutShortStrike  float64
	CallShortStrike float64
	CallLongStrike  float64
	ShortExpiry     string
	LongExpiry      string
	PutLongPrem     Premium
	PutShortPrem    Premium
	CallShortPrem   Premium
	CallLongPrem    Premium
	Quantity        int
	IV              float64
}

// DoubleDiagonal writes a near-dated strangle and buys a far-dated one
// around it. Strikes must satisfy
// put long <= put short < call short <= call long.
func DoubleDiagonal(p DoubleDiagonalParams) (domain.Strategy, error) {
	ordered := p.PutLongStrike <= p.PutShortStrike &&
		p.PutShortStrike < p.CallShortStrike &&
		p.CallShortStrike <= p.CallLongStrike
	if !ordered {
		return domain.Strategy{}, domain.NewStrategyError(
			"double diagonal strike order must be put long <= put short < call short <= call long")
	}
	if p.ShortExpiry >= p.LongExpiry {
		return domain.Strategy{}, domain.NewStrategyError(
			"double diagonal requires short expiry %s before long expiry %s", p.ShortExpiry, p.LongExpiry)
	}
	legs := []domain.Leg{
		optionLeg(domain.InstrumentPut, domain.DirectionLong, p.PutLongStrike, p.LongExpiry, p.PutLongPrem, p.Quantity, p.IV),
		optionLeg(domain.InstrumentPut, domain.DirectionShort, p.PutShortStrike, p.ShortExpiry, p.PutShortPrem, p.Quantity, p.IV),
		optionLeg(domain.InstrumentCall, domain.DirectionShort, p.CallShortStrike, p.ShortExpiry, p.CallShortPrem, p.Quantity, p.IV),
		optionLeg(domain.InstrumentCall, domain.DirectionLong, p.CallLongStrike, p.LongExpiry, p.CallLongPrem, p.Quantity, p.IV),
	}
	return finish(domain.StrategyDoubleDiagonal, legs)
}

// finish runs the canonical-leg validation shared by every builder and
// wraps the legs into a strategy value.
func finish(t domain.StrategyType, legs []domain.Leg) (domain.Strategy, error) {
	if err := ValidateLegs(legs); err != nil {
		return domain.Strategy{}, err
	}
	return domain.NewStrategy(t, legs), nil
}
