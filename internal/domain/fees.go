package domain

// FeeModel returns the venue's fee on winnings, as a fraction, for a contract
// bought at the given price (implied probability).
type FeeModel func(price float64) float64

// Kalshi charges roughly 0.07 * price * (1-price) per contract, which works
// out to 0.07 * price as a fraction of winnings.
const kalshiFeeCoeff = 0.07

// Polymarket taker fee on winnings.
const polymarketFeeRate = 0.02

// KalshiFee is the Kalshi trading fee model.
func KalshiFee(price float64) float64 { return kalshiFeeCoeff * price }

// PolymarketFee is the flat Polymarket taker fee model.
func PolymarketFee(price float64) float64 { return polymarketFeeRate }

// SportsbookFee is zero: the book's margin is already priced into the odds.
func SportsbookFee(price float64) float64 { return 0 }

// FeeSchedule maps each source to its fee model.
type FeeSchedule map[Source]FeeModel

// DefaultFees returns the standard per-venue fee schedule.
func DefaultFees() FeeSchedule {
	return FeeSchedule{
		SourcePolymarket: PolymarketFee,
		SourceKalshi:     KalshiFee,
		SourceSportsbook: SportsbookFee,
	}
}

// For returns the fee model for a source, defaulting to zero fees for
// unrecognized venues.
func (s FeeSchedule) For(src Source) FeeModel {
	if m, ok := s[src]; ok {
		return m
	}
	return SportsbookFee
}
