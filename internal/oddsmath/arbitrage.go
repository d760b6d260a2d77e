package oddsmath

import "github.com/oddsync/arbscan/internal/domain"

// ArbResult is the outcome of a binary arbitrage check.
type ArbResult struct {
	GrossPct float64 // profit before fees, percent of payout
	NetPct   float64 // profit after fees; may be negative
	Cost     float64 // probA + probB
	NetCost  float64 // fee-adjusted cost
}

// ComputeBinaryArb checks whether buying opposing outcomes at probA and probB
// locks in a profit. feeA and feeB are each venue's fee on winnings as a
// fraction. Returns nil when either probability is non-positive or the
// combined cost is at or above 1 (no arb).
//
// Fees reduce winnings, which is equivalent to raising the effective cost of
// a side: adj = p + (1-p)*fee. Net profit can therefore be negative even when
// gross profit is positive.
func ComputeBinaryArb(probA, probB, feeA, feeB float64) *ArbResult {
	if probA <= 0 || probB <= 0 {
		return nil
	}

	cost := probA + probB
	if cost >= 1.0 {
		return nil
	}

	adjA := probA + (1-probA)*feeA
	adjB := probB + (1-probB)*feeB
	netCost := adjA + adjB

	return &ArbResult{
		GrossPct: Round3((1.0 - cost) * 100),
		NetPct:   Round3((1.0 - netCost) * 100),
		Cost:     cost,
		NetCost:  netCost,
	}
}

// ComputeStakes splits a reference bankroll across the two legs so both
// outcomes pay out the same amount: stake proportional to each side's
// probability, payout equal to the bankroll. Returns nil when no arb exists.
func ComputeStakes(probA, probB, bankroll float64) *domain.Stakes {
	if probA <= 0 || probB <= 0 {
		return nil
	}
	if probA+probB >= 1.0 {
		return nil
	}

	stakeA := Round2(bankroll * probA)
	stakeB := Round2(bankroll * probB)
	total := Round2(stakeA + stakeB)

	return &domain.Stakes{
		StakeA:           stakeA,
		StakeB:           stakeB,
		TotalStaked:      total,
		Payout:           Round2(bankroll),
		GuaranteedProfit: Round2(bankroll - total),
	}
}

// ComputeEV returns the expected value, in percent, of buying an outcome at
// the given price (implied probability) when its true probability is
// fairProb. feeRate is the venue's fee on winnings. Returns false when the
// inputs are out of range.
func ComputeEV(price, fairProb, feeRate float64) (float64, bool) {
	if price <= 0 || price >= 1 || fairProb <= 0 {
		return 0, false
	}
	payout := 1.0 / price
	effective := payout - (payout-1.0)*feeRate
	return (effective*fairProb - 1.0) * 100, true
}
