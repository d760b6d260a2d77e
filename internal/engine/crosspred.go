package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/oddsync/arbscan/internal/align"
	"github.com/oddsync/arbscan/internal/classify"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
	"github.com/oddsync/arbscan/internal/oddsmath"
)

const crossPredScoreFloor = 0.35

// findCrossPredictionArbs pairs Polymarket and Kalshi markets on the same
// proposition and reports arbs between the two venues' prices.
func (s *Scanner) findCrossPredictionArbs(poly, kalshi []domain.BinaryMarket, params Params) []domain.Opportunity {
	var opps []domain.Opportunity

	// Reverse index from team to Kalshi markets.
	byTeam := make(map[string][]int)
	for i, km := range kalshi {
		for _, team := range km.Teams {
			if team != "" {
				byTeam[team] = append(byTeam[team], i)
			}
		}
	}

	for _, pm := range poly {
		if !pm.Liquid() {
			continue
		}
		pmQuestion := strings.ToLower(pm.Question)

		candidates := kalshi
		if len(pm.Teams) > 0 {
			seen := make(map[int]bool)
			candidates = nil
			for _, team := range pm.Teams {
				for _, i := range byTeam[team] {
					if !seen[i] {
						seen[i] = true
						candidates = append(candidates, kalshi[i])
					}
				}
			}
		}

		for _, km := range candidates {
			if !km.Liquid() {
				continue
			}
			if !crossTypesCompatible(pm, km) {
				continue
			}

			kmQuestion := strings.ToLower(km.Question)
			teamOverlap := countOverlap(pm.Teams, km.Teams)

			// A game-winner pairing with the wrong second team is a
			// different game, however similar the text.
			isGame := strings.Contains(pmQuestion, "win") || strings.Contains(kmQuestion, "win")
			if isGame && len(pm.Teams) >= 2 && len(km.Teams) >= 2 && teamOverlap < 2 {
				continue
			}

			score := float64(teamOverlap)*0.3 + normalize.SimilarityFromTokens(pm.TokenSet, km.TokenSet)*0.4
			if score < crossPredScoreFloor {
				continue
			}

			decision := align.AgainstBinary(pm, km)

			// Aligned YES sides arb as poly YES vs kalshi NO; opposed ones
			// as the two YES sides.
			pa := pm.YesPrice()
			pb := km.NoPrice()
			paSide, pbSide := pm.Outcomes[0], km.Outcomes[1]
			if !decision.SameAsYes {
				pb = km.YesPrice()
				pbSide = km.Outcomes[0]
			}

			polyFee := s.fees.For(domain.SourcePolymarket)(pa)
			kalshiFee := s.fees.For(domain.SourceKalshi)(pb)

			arb := oddsmath.ComputeBinaryArb(pa, pb, polyFee, kalshiFee)
			if arb == nil || arb.GrossPct <= 0 || arb.GrossPct > maxGrossArbPct {
				continue
			}
			if arb.NetPct < params.MinNetPct {
				continue
			}

			risk, riskNote := crossPredRisk(arb.GrossPct, score)

			opps = append(opps, domain.Opportunity{
				ID: domain.OpportunityID(fmt.Sprintf("cross-%s-%s-%s",
					pm.ID, km.ID, paSide)),
				Type:        domain.OpportunityArb,
				Sport:       "Sports",
				Event:       truncate(pm.Question, 60),
				EventDetail: pm.Question,
				PlatformA: domain.Leg{
					Name:         sourceName(domain.SourcePolymarket),
					Side:         paSide,
					Price:        oddsmath.Round4(pa),
					ImpliedProb:  oddsmath.Round4(pa),
					AmericanOdds: oddsmath.ImpliedToAmerican(pa),
					FeePct:       oddsmath.Round2(polyFee * 100),
					URL:          pm.URL,
					MarketID:     pm.ID,
				},
				PlatformB: domain.Leg{
					Name:         sourceName(domain.SourceKalshi),
					Side:         pbSide,
					Price:        oddsmath.Round4(pb),
					ImpliedProb:  oddsmath.Round4(pb),
					AmericanOdds: oddsmath.ImpliedToAmerican(pb),
					FeePct:       oddsmath.Round2(kalshiFee * 100),
					URL:          km.URL,
					MarketID:     km.ID,
				},
				MarketType:  domain.MarketBinary,
				GrossArbPct: arb.GrossPct,
				NetArbPct:   arb.NetPct,
				Stakes:      oddsmath.ComputeStakes(pa, pb, params.Bankroll),
				Confidence:  oddsmath.Round2(score),
				Risk:        risk,
				RiskNote:    riskNote,
				Liquidity:   pm.Liquidity,
				Volume:      pm.Volume,
			})
		}
	}

	sort.SliceStable(opps, func(i, j int) bool { return opps[i].NetArbPct > opps[j].NetArbPct })
	return opps
}

// crossTypesCompatible rejects pairings whose declared market types differ.
// An unknown on either side is permissive. Totals additionally require the
// two questions to quote the same line.
func crossTypesCompatible(pm, km domain.BinaryMarket) bool {
	if pm.Subtype != domain.MarketUnknown && km.Subtype != domain.MarketUnknown && pm.Subtype != km.Subtype {
		return false
	}
	if pm.Subtype == domain.MarketTotals && km.Subtype == domain.MarketTotals {
		pmLine := classify.ExtractPointLine(pm.Question)
		kmLine := classify.ExtractPointLine(km.Question)
		if pmLine != nil && kmLine != nil && math.Abs(*pmLine-*kmLine) >= 0.01 {
			return false
		}
	}
	return true
}

func crossPredRisk(grossPct, score float64) (domain.ResolutionRisk, string) {
	if grossPct > 10 {
		return domain.RiskHigh, "Likely stale pricing: an arb this large (>10%) usually means one side has outdated odds"
	}
	if score < 0.6 {
		return domain.RiskMedium, "Cross-platform prediction market arb: verify both markets resolve on the same criteria"
	}
	return domain.RiskLow, "Cross-platform prediction market arb: verify both markets resolve on the same criteria"
}

func countOverlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	n := 0
	for _, t := range b {
		if set[t] {
			n++
		}
	}
	return n
}
