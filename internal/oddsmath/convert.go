// Package oddsmath implements odds conversions and the arbitrage, stake, and
// expected-value calculations used by the scan engine.
package oddsmath

import "math"

// AmericanToDecimal converts American odds to decimal odds.
func AmericanToDecimal(american float64) float64 {
	if american > 0 {
		return american/100.0 + 1.0
	}
	return 100.0/math.Abs(american) + 1.0
}

// DecimalToImplied converts decimal odds to an implied probability.
// Non-positive odds yield 0.
func DecimalToImplied(decimal float64) float64 {
	if decimal <= 0 {
		return 0
	}
	return 1.0 / decimal
}

// AmericanToImplied converts American odds to an implied probability.
func AmericanToImplied(american float64) float64 {
	return DecimalToImplied(AmericanToDecimal(american))
}

// ImpliedToAmerican converts a probability back to (rounded) American odds.
// Probabilities outside (0,1) yield 0.
func ImpliedToAmerican(prob float64) int {
	if prob <= 0 || prob >= 1 {
		return 0
	}
	if prob >= 0.5 {
		return int(math.Round(-100.0 * prob / (1.0 - prob)))
	}
	return int(math.Round(100.0 * (1.0 - prob) / prob))
}

// Round3 rounds to three decimals; used for percentage figures.
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Round4 rounds to four decimals; used for probabilities.
func Round4(v float64) float64 { return math.Round(v*10000) / 10000 }

// Round2 rounds to two decimals; used for dollar amounts.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
