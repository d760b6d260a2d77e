// Package match narrows sportsbook quotes to plausible candidates for a
// prediction market and scores how confidently each pairing refers to the
// same proposition.
package match

import (
	"math"

	"github.com/oddsync/arbscan/internal/classify"
	"github.com/oddsync/arbscan/internal/domain"
)

// marketCompat lists which sportsbook market types each prediction-market
// type may be compared against. An empty set means the type has no
// sportsbook counterpart: Kalshi "wins by over X" is not a standard spread,
// no first-half data is fetched, and futures never match single-game odds.
var marketCompat = map[domain.MarketType][]domain.MarketType{
	domain.MarketMoneyline:     {domain.MarketMoneyline},
	domain.MarketSpreads:       {domain.MarketSpreads},
	domain.MarketTotals:        {domain.MarketTotals},
	domain.MarketWinningMargin: {},
	domain.MarketFirstHalf:     {},
	domain.MarketPlayerProps: {
		domain.MarketPlayerPoints, domain.MarketPlayerRebounds,
		domain.MarketPlayerAssists, domain.MarketPlayerThrees,
	},
	domain.MarketFutures: {},
	domain.MarketUnknown: {
		domain.MarketMoneyline, domain.MarketSpreads, domain.MarketTotals,
		domain.MarketPlayerPoints, domain.MarketPlayerRebounds,
		domain.MarketPlayerAssists, domain.MarketPlayerThrees,
	},
}

// CompatibleTypes returns the sportsbook market types a prediction-market
// type may match. Unlisted types fall back to the unknown set.
func CompatibleTypes(t domain.MarketType) []domain.MarketType {
	if types, ok := marketCompat[t]; ok {
		return types
	}
	return marketCompat[domain.MarketUnknown]
}

// Index is a reverse index from canonical team name to sportsbook quotes,
// used to narrow the candidate set before scoring. Build once per snapshot.
type Index struct {
	quotes []domain.BookQuote
	byTeam map[string][]int
}

// NewIndex builds the team index over a sportsbook snapshot.
func NewIndex(quotes []domain.BookQuote) *Index {
	byTeam := make(map[string][]int)
	for i, q := range quotes {
		for _, team := range q.Teams {
			if team != "" {
				byTeam[team] = append(byTeam[team], i)
			}
		}
	}
	return &Index{quotes: quotes, byTeam: byTeam}
}

// Candidates returns the sportsbook quotes that could plausibly price the
// same proposition as the given prediction market. A market with no team
// references yields no candidates; neither does one whose type has no
// sportsbook counterpart. Soccer moneylines are excluded outright: the book
// side settles three ways (win/draw/lose) and cannot arb a binary contract.
// For line markets the candidate's point must sit within 0.01 of the
// prediction's line; a line market with no extractable line is too ambiguous
// to match at all.
func (ix *Index) Candidates(pred domain.BinaryMarket) []domain.BookQuote {
	if len(pred.Teams) == 0 {
		return nil
	}

	allowed := CompatibleTypes(pred.Subtype)
	if len(allowed) == 0 {
		return nil
	}
	if pred.Subtype == domain.MarketMoneyline && pred.Sport == domain.SportSoccer {
		return nil
	}

	var predLine *float64
	lineMarket := pred.Subtype == domain.MarketTotals ||
		pred.Subtype == domain.MarketSpreads ||
		pred.Subtype == domain.MarketPlayerProps
	if lineMarket {
		predLine = pred.PointLine
		if predLine == nil {
			predLine = classify.ExtractPointLine(pred.Question)
		}
		if predLine == nil {
			return nil
		}
	}

	seen := make(map[int]bool)
	var out []domain.BookQuote
	for _, team := range pred.Teams {
		for _, i := range ix.byTeam[team] {
			if seen[i] {
				continue
			}
			seen[i] = true

			q := ix.quotes[i]
			if pred.Sport != "" && q.Sport != "" && q.Sport != pred.Sport {
				continue
			}
			if !typeAllowed(q.MarketType, allowed) {
				continue
			}
			if lineMarket {
				if q.Point == nil || math.Abs(*q.Point-*predLine) >= 0.01 {
					continue
				}
			}
			out = append(out, q)
		}
	}
	return out
}

func typeAllowed(t domain.MarketType, allowed []domain.MarketType) bool {
	for _, a := range allowed {
		if t == a {
			return true
		}
	}
	return false
}
