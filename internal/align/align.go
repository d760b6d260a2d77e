// Package align decides which side of a prediction market corresponds to a
// given quote, so arbitrage legs end up on genuinely opposing outcomes.
package align

import (
	"math"
	"strings"

	"github.com/oddsync/arbscan/internal/classify"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
)

// Method records which rule produced an alignment decision.
type Method string

const (
	MethodOverUnder Method = "over_under"
	MethodTeamLabel Method = "team_label"
	MethodPrice     Method = "price_proximity"
)

// Decision is the outcome of side alignment: whether the other quote prices
// the same outcome as the prediction market's YES side.
type Decision struct {
	SameAsYes bool
	Method    Method
}

// Generic tokens stripped from team-label overlap; "Manchester City" and
// "Leicester City" share "city" without being the same team.
var labelStoplist = map[string]bool{
	"fc": true, "city": true, "united": true,
	"the": true, "de": true, "la": true,
}

// AgainstBook aligns a prediction market against a sportsbook quote.
//
// Totals and props align on explicit over/under wording: price proximity is
// useless there because both sides of a total trade near 50/50. Moneylines
// align on team-label token overlap with the quote's outcome name, since
// price proximity near even money can put both legs on the same team. Only
// when neither signal exists does the price-proximity heuristic decide.
func AgainstBook(norm *normalize.Normalizer, pred domain.BinaryMarket, q domain.BookQuote) Decision {
	if isTotalsPairing(pred.Subtype, q.MarketType) {
		predText := strings.ToLower(pred.Question + " " + pred.Description + " " + pred.YesLabel)
		hasOver := classify.HasOver(predText)
		hasUnder := classify.HasUnder(predText)
		if hasOver || hasUnder {
			predIsOver := hasOver && !hasUnder
			quoteIsOver := strings.EqualFold(q.OutcomeName, "over")
			return Decision{SameAsYes: predIsOver == quoteIsOver, Method: MethodOverUnder}
		}
		return priceProximity(pred, q.ImpliedProb)
	}

	if pred.Subtype == domain.MarketMoneyline {
		yesLabel := strings.TrimSpace(pred.YesLabel)
		outcome := strings.TrimSpace(q.OutcomeName)
		if yesLabel != "" && outcome != "" {
			return Decision{
				SameAsYes: labelsOverlap(norm, yesLabel, outcome),
				Method:    MethodTeamLabel,
			}
		}
		return priceProximity(pred, q.ImpliedProb)
	}

	return priceProximity(pred, q.ImpliedProb)
}

// AgainstBinary aligns two prediction markets (Polymarket vs Kalshi).
// SameAsYes means a's YES and b's YES price the same outcome.
func AgainstBinary(a, b domain.BinaryMarket) Decision {
	if a.Subtype == domain.MarketTotals || a.Subtype == domain.MarketPlayerProps {
		aq := strings.ToLower(a.Question)
		bq := strings.ToLower(b.Question)
		aOver, aUnder := classify.HasOver(aq), classify.HasUnder(aq)
		bOver, bUnder := classify.HasOver(bq), classify.HasUnder(bq)
		if (aOver || aUnder) && (bOver || bUnder) {
			return Decision{
				SameAsYes: (aOver && !aUnder) == (bOver && !bUnder),
				Method:    MethodOverUnder,
			}
		}
	}

	diffAligned := math.Abs(a.YesPrice() - b.YesPrice())
	diffOpposed := math.Abs(a.YesPrice() - b.NoPrice())
	return Decision{SameAsYes: diffAligned <= diffOpposed, Method: MethodPrice}
}

// labelsOverlap reports whether the YES label and the quote outcome share a
// meaningful token after canonicalization.
func labelsOverlap(norm *normalize.Normalizer, yesLabel, outcome string) bool {
	yesTokens := norm.TokenSet(yesLabel)
	for t := range norm.TokenSet(outcome) {
		if labelStoplist[t] {
			continue
		}
		if yesTokens[t] {
			return true
		}
	}
	return false
}

// priceProximity assumes the side closer in price to the quote is the same
// outcome. A heuristic of last resort: near 50/50 it can misalign.
func priceProximity(pred domain.BinaryMarket, quoteProb float64) Decision {
	diffYes := math.Abs(pred.YesPrice() - quoteProb)
	diffNo := math.Abs(pred.NoPrice() - quoteProb)
	return Decision{SameAsYes: diffYes <= diffNo, Method: MethodPrice}
}

func isTotalsPairing(predType, quoteType domain.MarketType) bool {
	if predType != domain.MarketTotals && predType != domain.MarketPlayerProps {
		return false
	}
	switch quoteType {
	case domain.MarketTotals, domain.MarketPlayerPoints, domain.MarketPlayerRebounds,
		domain.MarketPlayerAssists, domain.MarketPlayerThrees:
		return true
	}
	return false
}
