package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/fairodds"
	"github.com/oddsync/arbscan/internal/oddsmath"
)

type bookGroupKey struct {
	event  string
	market domain.MarketType
	point  string // formatted line; "" when the market has none
}

// findCrossBook groups sportsbook quotes by fixture, market, and line, then
// pairs opposing outcomes at their best available prices. Sides summing
// under 1 are a book-vs-book arb; otherwise each side is checked for +EV
// against the fair-odds index.
func (s *Scanner) findCrossBook(books []domain.BookQuote, fair fairodds.Index, params Params) []domain.Opportunity {
	groups := make(map[bookGroupKey]map[string][]domain.BookQuote)
	for _, q := range books {
		key := bookGroupKey{event: q.EventKey(), market: q.MarketType}
		if q.Point != nil {
			key.point = fmt.Sprintf("%g", *q.Point)
		}
		if groups[key] == nil {
			groups[key] = make(map[string][]domain.BookQuote)
		}
		groups[key][q.OutcomeName] = append(groups[key][q.OutcomeName], q)
	}

	keys := make([]bookGroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.event != b.event {
			return a.event < b.event
		}
		if a.market != b.market {
			return a.market < b.market
		}
		return a.point < b.point
	})

	var opps []domain.Opportunity
	for _, key := range keys {
		outcomeMap := groups[key]
		outcomes := make([]string, 0, len(outcomeMap))
		for name := range outcomeMap {
			outcomes = append(outcomes, name)
		}
		sort.Strings(outcomes)
		if len(outcomes) < 2 {
			continue
		}

		for i := 0; i < len(outcomes); i++ {
			for j := i + 1; j < len(outcomes); j++ {
				bestA := bestPrice(outcomeMap[outcomes[i]])
				bestB := bestPrice(outcomeMap[outcomes[j]])
				if bestA == nil || bestB == nil {
					continue
				}
				if bestA.Bookmaker == bestB.Bookmaker {
					continue
				}

				cost := bestA.ImpliedProb + bestB.ImpliedProb
				if cost < 1.0 {
					if opp, ok := s.buildCrossBookArb(key, *bestA, *bestB, outcomes[i], outcomes[j], params); ok {
						opps = append(opps, opp)
					}
					continue
				}

				fairProbs, ok := fair.Lookup(key.event, key.market)
				if !ok {
					continue
				}
				for _, side := range []*domain.BookQuote{bestA, bestB} {
					if opp, ok := s.buildCrossBookEV(key, *side, fairProbs, params); ok {
						opps = append(opps, opp)
					}
				}
			}
		}
	}

	deduped := dedupeByKeepEdge(opps, func(o domain.Opportunity) string {
		return fmt.Sprintf("%s-%s-%s", o.Event, o.PlatformA.Name, o.PlatformA.Side)
	})
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].EVPct+deduped[i].NetArbPct > deduped[j].EVPct+deduped[j].NetArbPct
	})
	return deduped
}

// bestPrice returns the entry with the lowest implied probability (the best
// odds for the bettor), skipping unpriced quotes.
func bestPrice(entries []domain.BookQuote) *domain.BookQuote {
	var best *domain.BookQuote
	for i := range entries {
		if !entries[i].Priced() {
			continue
		}
		if best == nil || entries[i].ImpliedProb < best.ImpliedProb {
			best = &entries[i]
		}
	}
	return best
}

func (s *Scanner) buildCrossBookArb(key bookGroupKey, a, b domain.BookQuote,
	outcomeA, outcomeB string, params Params) (domain.Opportunity, bool) {

	grossPct := oddsmath.Round3((1.0 - a.ImpliedProb - b.ImpliedProb) * 100)
	if grossPct > maxGrossArbPct {
		return domain.Opportunity{}, false
	}

	isLive, timeDisplay := timeInfo(a.CommenceTime, s.now())
	var commence *time.Time
	if !a.CommenceTime.IsZero() {
		t := a.CommenceTime
		commence = &t
	}

	sideA, sideB := crossBookSides(outcomeA, outcomeB, a.Point)

	return domain.Opportunity{
		ID: domain.OpportunityID(fmt.Sprintf("xsb-%s-%s-%s-%s",
			key.event, key.market, outcomeA, outcomeB)),
		Type:  domain.OpportunityArb,
		Sport: sportDisplay(a.SportKey),
		Event: fmt.Sprintf("%s - %s", a.EventName(), marketLabel(key.market)),
		EventDetail: fmt.Sprintf("Sportsbook arb: %s vs %s",
			bookTitle(a), bookTitle(b)),
		CommenceTime: commence,
		TimeDisplay:  timeDisplay,
		IsLive:       isLive,
		PlatformA: domain.Leg{
			Name:         bookTitle(a),
			Side:         sideA,
			Price:        a.AmericanOdds,
			ImpliedProb:  oddsmath.Round4(a.ImpliedProb),
			AmericanOdds: int(a.AmericanOdds),
		},
		PlatformB: domain.Leg{
			Name:         bookTitle(b),
			Side:         sideB,
			Price:        b.AmericanOdds,
			ImpliedProb:  oddsmath.Round4(b.ImpliedProb),
			AmericanOdds: int(b.AmericanOdds),
		},
		MarketType:  key.market,
		GrossArbPct: grossPct,
		NetArbPct:   grossPct,
		Stakes:      oddsmath.ComputeStakes(a.ImpliedProb, b.ImpliedProb, params.Bankroll),
		Confidence:  1.0,
		Risk:        domain.RiskLow,
		RiskNote:    "Cross-sportsbook arb: same event, different bookmakers. Low risk.",
		IsProp:      a.IsProp,
	}, true
}

func (s *Scanner) buildCrossBookEV(key bookGroupKey, q domain.BookQuote,
	fairProbs map[string]float64, params Params) (domain.Opportunity, bool) {

	fairProb := fairProbs[q.OutcomeKey()]
	if fairProb <= 0 {
		return domain.Opportunity{}, false
	}
	ev, ok := oddsmath.ComputeEV(q.ImpliedProb, fairProb, 0)
	if !ok || ev < params.MinEVPct || ev > maxEVPct {
		return domain.Opportunity{}, false
	}

	isLive, timeDisplay := timeInfo(q.CommenceTime, s.now())
	var commence *time.Time
	if !q.CommenceTime.IsZero() {
		t := q.CommenceTime
		commence = &t
	}

	sideLabel := bookSideLabel(q)

	return domain.Opportunity{
		ID: domain.OpportunityID(fmt.Sprintf("xev-%s-%s-%s-%s",
			key.event, key.market, q.OutcomeName, q.Bookmaker)),
		Type:  domain.OpportunityEV,
		Sport: sportDisplay(q.SportKey),
		Event: fmt.Sprintf("%s - %s", q.EventName(), marketLabel(key.market)),
		EventDetail: fmt.Sprintf("+EV: %s %s vs consensus fair odds",
			bookTitle(q), sideLabel),
		CommenceTime: commence,
		TimeDisplay:  timeDisplay,
		IsLive:       isLive,
		PlatformA: domain.Leg{
			Name:         bookTitle(q),
			Side:         sideLabel,
			Price:        q.AmericanOdds,
			ImpliedProb:  oddsmath.Round4(q.ImpliedProb),
			AmericanOdds: int(q.AmericanOdds),
		},
		PlatformB: domain.Leg{
			Name:         "Consensus",
			Side:         fmt.Sprintf("Fair: %.1f%%", fairProb*100),
			ImpliedProb:  oddsmath.Round4(fairProb),
			AmericanOdds: oddsmath.ImpliedToAmerican(fairProb),
		},
		MarketType:    key.market,
		NetArbPct:     oddsmath.Round3(ev),
		EVPct:         oddsmath.Round3(ev),
		ConsensusProb: oddsmath.Round4(fairProb),
		Confidence:    1.0,
		Risk:          domain.RiskMedium,
		RiskNote: fmt.Sprintf("+EV bet: %.1f%% edge vs devigged consensus. Variance applies, use Kelly sizing.",
			oddsmath.Round3(ev)),
		IsProp: q.IsProp,
	}, true
}

// crossBookSides renders the two opposing side labels, negating the line for
// the second side of a spread.
func crossBookSides(outcomeA, outcomeB string, point *float64) (string, string) {
	if point == nil {
		return outcomeA, outcomeB
	}
	if isOverUnder(outcomeA) {
		return fmt.Sprintf("%s %g", outcomeA, *point), fmt.Sprintf("%s %g", outcomeB, *point)
	}
	signA := ""
	if *point > 0 {
		signA = "+"
	}
	opp := -*point
	signB := ""
	if opp > 0 {
		signB = "+"
	}
	return fmt.Sprintf("%s %s%g", outcomeA, signA, *point),
		fmt.Sprintf("%s %s%g", outcomeB, signB, opp)
}

func isOverUnder(outcome string) bool {
	return outcome == "Over" || outcome == "Under" || outcome == "over" || outcome == "under"
}

// dedupeByKeepEdge keeps the best opportunity per key without re-sorting,
// preserving input order for the caller's own ordering pass.
func dedupeByKeepEdge(opps []domain.Opportunity, key func(domain.Opportunity) string) []domain.Opportunity {
	seen := make(map[string]int, len(opps))
	var out []domain.Opportunity
	for _, o := range opps {
		k := key(o)
		if i, ok := seen[k]; ok {
			if o.Edge() > out[i].Edge() {
				out[i] = o
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, o)
	}
	return out
}
