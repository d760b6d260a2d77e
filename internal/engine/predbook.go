package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/oddsync/arbscan/internal/align"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/fairodds"
	"github.com/oddsync/arbscan/internal/match"
	"github.com/oddsync/arbscan/internal/oddsmath"
)

// Gross arb percentages above this are treated as stale, non-executable
// pricing rather than real opportunities.
const maxGrossArbPct = 15.0

// EV percentages above this almost certainly come from stale quotes.
const maxEVPct = 30.0

// findBookArbs matches prediction markets against sportsbook quotes and
// reports every fee-adjusted arbitrage between them.
func (s *Scanner) findBookArbs(preds []domain.BinaryMarket, ix *match.Index, params Params) []domain.Opportunity {
	var opps []domain.Opportunity

	for _, pred := range preds {
		if !pred.Priced() || !pred.Liquid() {
			continue
		}
		candidates := ix.Candidates(pred)
		if len(candidates) == 0 {
			continue
		}

		for _, cand := range match.Match(pred, candidates) {
			q := cand.Quote
			if !q.Priced() {
				continue
			}

			decision := align.AgainstBook(s.norm, pred, q)

			// The quote prices one side; the arb takes the prediction
			// market's opposing side.
			predYes := !decision.SameAsYes
			predPrice := pred.NoPrice()
			if predYes {
				predPrice = pred.YesPrice()
			}
			predFee := s.fees.For(pred.Source)(predPrice)

			arb := oddsmath.ComputeBinaryArb(predPrice, q.ImpliedProb, predFee, 0)
			if arb == nil || arb.GrossPct <= 0 || arb.GrossPct > maxGrossArbPct {
				continue
			}
			if arb.NetPct < params.MinNetPct {
				continue
			}

			opps = append(opps, s.buildBookArb(pred, q, arb, predYes, predPrice, predFee, cand.Confidence, params))
		}
	}

	// Keep the best arb per (event, platform pair, market type).
	return dedupeBy(opps, func(o domain.Opportunity) string {
		return fmt.Sprintf("%s-%s-%s-%s", o.Event, o.PlatformA.Name, o.PlatformB.Name, o.MarketType)
	})
}

func (s *Scanner) buildBookArb(pred domain.BinaryMarket, q domain.BookQuote, arb *oddsmath.ArbResult,
	predYes bool, predPrice, predFee, confidence float64, params Params) domain.Opportunity {

	predSide := predSideLabel(pred, predYes)
	isLive, timeDisplay := timeInfo(q.CommenceTime, s.now())
	risk, riskNote := arbRisk(arb.GrossPct, confidence, pred.Source)

	var commence *time.Time
	if !q.CommenceTime.IsZero() {
		t := q.CommenceTime
		commence = &t
	}

	return domain.Opportunity{
		ID: domain.OpportunityID(fmt.Sprintf("%s-%s-%s-%s",
			pred.ID, q.Bookmaker, q.OutcomeName, predSide)),
		Type:         domain.OpportunityArb,
		Sport:        sportDisplay(q.SportKey),
		Event:        eventLabel(q.EventName(), pred.Subtype, pred.PointLine),
		EventDetail:  pred.Question,
		CommenceTime: commence,
		TimeDisplay:  timeDisplay,
		IsLive:       isLive,
		PlatformA: domain.Leg{
			Name:         sourceName(pred.Source),
			Side:         predSide,
			Price:        oddsmath.Round4(predPrice),
			ImpliedProb:  oddsmath.Round4(predPrice),
			AmericanOdds: oddsmath.ImpliedToAmerican(predPrice),
			FeePct:       oddsmath.Round2(predFee * 100),
			URL:          pred.URL,
			MarketID:     pred.ID,
		},
		PlatformB: domain.Leg{
			Name:         bookTitle(q),
			Side:         bookSideLabel(q),
			Price:        q.AmericanOdds,
			ImpliedProb:  oddsmath.Round4(q.ImpliedProb),
			AmericanOdds: int(q.AmericanOdds),
		},
		MarketType:  q.MarketType,
		GrossArbPct: arb.GrossPct,
		NetArbPct:   arb.NetPct,
		Stakes:      oddsmath.ComputeStakes(predPrice, q.ImpliedProb, params.Bankroll),
		Confidence:  oddsmath.Round2(confidence),
		Risk:        risk,
		RiskNote:    riskNote,
		IsProp:      q.IsProp,
		Liquidity:   pred.Liquidity,
		Volume:      pred.Volume,
	}
}

// findBookEV compares each prediction market's best sportsbook match against
// the devigged fair-odds index and reports prices that beat fair value.
func (s *Scanner) findBookEV(preds []domain.BinaryMarket, ix *match.Index, fair fairodds.Index, params Params) []domain.Opportunity {
	var opps []domain.Opportunity

	for _, pred := range preds {
		if !pred.Priced() || !pred.Liquid() {
			continue
		}
		candidates := ix.Candidates(pred)
		if len(candidates) == 0 {
			continue
		}
		matches := match.Match(pred, candidates)
		if len(matches) == 0 {
			continue
		}

		best := matches[0]
		q := best.Quote
		if !q.Priced() {
			continue
		}

		fairProbs, ok := fair.Lookup(q.EventKey(), q.MarketType)
		if !ok {
			continue
		}

		decision := align.AgainstBook(s.norm, pred, q)

		// When the quote matches the YES side we bet NO, so fair value comes
		// from the group's opposing outcome.
		var predPrice, fairProb float64
		predYes := !decision.SameAsYes
		if predYes {
			predPrice = pred.YesPrice()
			fairProb = fairProbs[q.OutcomeKey()]
		} else {
			predPrice = pred.NoPrice()
			fairProb = opposingFairProb(fairProbs, q.OutcomeKey())
		}
		if fairProb <= 0 {
			continue
		}

		predFee := s.fees.For(pred.Source)(predPrice)
		ev, ok := oddsmath.ComputeEV(predPrice, fairProb, predFee)
		if !ok || ev < params.MinEVPct || ev > maxEVPct {
			continue
		}

		opps = append(opps, s.buildBookEV(pred, q, predYes, predPrice, predFee, ev, fairProb, best.Confidence))
	}

	deduped := dedupeBy(opps, func(o domain.Opportunity) string {
		return fmt.Sprintf("%s-%s-%s", o.Event, o.PlatformA.Name, o.MarketType)
	})
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].EVPct > deduped[j].EVPct
	})
	return deduped
}

func (s *Scanner) buildBookEV(pred domain.BinaryMarket, q domain.BookQuote,
	predYes bool, predPrice, predFee, ev, fairProb, confidence float64) domain.Opportunity {

	predSide := predSideLabel(pred, predYes)
	isLive, timeDisplay := timeInfo(q.CommenceTime, s.now())

	var commence *time.Time
	if !q.CommenceTime.IsZero() {
		t := q.CommenceTime
		commence = &t
	}

	return domain.Opportunity{
		ID: domain.OpportunityID(fmt.Sprintf("ev-%s-%s-%s",
			pred.ID, q.Bookmaker, predSide)),
		Type:         domain.OpportunityEV,
		Sport:        sportDisplay(q.SportKey),
		Event:        eventLabel(q.EventName(), pred.Subtype, pred.PointLine),
		EventDetail:  pred.Question,
		CommenceTime: commence,
		TimeDisplay:  timeDisplay,
		IsLive:       isLive,
		PlatformA: domain.Leg{
			Name:         sourceName(pred.Source),
			Side:         predSide,
			Price:        oddsmath.Round4(predPrice),
			ImpliedProb:  oddsmath.Round4(predPrice),
			AmericanOdds: oddsmath.ImpliedToAmerican(predPrice),
			FeePct:       oddsmath.Round2(predFee * 100),
			URL:          pred.URL,
			MarketID:     pred.ID,
		},
		PlatformB: domain.Leg{
			Name:         bookTitle(q),
			Side:         bookSideLabel(q) + " (ref)",
			Price:        q.AmericanOdds,
			ImpliedProb:  oddsmath.Round4(q.ImpliedProb),
			AmericanOdds: int(q.AmericanOdds),
		},
		MarketType:    q.MarketType,
		NetArbPct:     oddsmath.Round3(ev),
		EVPct:         oddsmath.Round3(ev),
		ConsensusProb: oddsmath.Round4(fairProb),
		Confidence:    oddsmath.Round2(confidence),
		Risk:          domain.RiskMedium,
		RiskNote: fmt.Sprintf("+EV bet: %.1f%% edge vs consensus fair odds. Not a guaranteed arb, variance applies.",
			oddsmath.Round3(ev)),
		IsProp:    q.IsProp,
		Liquidity: pred.Liquidity,
		Volume:    pred.Volume,
	}
}

// opposingFairProb returns the fair probability of the outcome opposite the
// given key, iterating keys in sorted order for determinism.
func opposingFairProb(fairProbs map[string]float64, outcomeKey string) float64 {
	keys := make([]string, 0, len(fairProbs))
	for k := range fairProbs {
		if k != outcomeKey {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0
	}
	sort.Strings(keys)
	return fairProbs[keys[0]]
}

// dedupeBy keeps the highest-edge opportunity per key, then sorts the
// survivors by edge descending.
func dedupeBy(opps []domain.Opportunity, key func(domain.Opportunity) string) []domain.Opportunity {
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
	sort.SliceStable(out, func(i, j int) bool { return out[i].Edge() > out[j].Edge() })
	return out
}

// bookTitle prefers the display title, falling back to the API key.
func bookTitle(q domain.BookQuote) string {
	if q.BookmakerTitle != "" {
		return q.BookmakerTitle
	}
	return q.Bookmaker
}
