package match

import (
	"sort"
	"strconv"
	"strings"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
)

const (
	// Confidence weights. Team agreement dominates; the rest refine.
	weightBothTeams   = 0.6
	weightOneTeam     = 0.3
	weightTextSim     = 0.3
	weightPlayerName  = 0.4
	weightPointLine   = 0.2
	weightOverUnder   = 0.15
	weightWinKeyword  = 0.1
	confidenceFloor   = 0.4
	maxCandidatesKept = 5
)

// Candidate is a scored pairing of a prediction market with one sportsbook
// quote.
type Candidate struct {
	Quote      domain.BookQuote
	Confidence float64
}

// Match scores each candidate quote against the prediction market and
// returns at most five candidates at or above the confidence floor, best
// first.
func Match(pred domain.BinaryMarket, candidates []domain.BookQuote) []Candidate {
	question := strings.ToLower(pred.Question)
	fullText := question + " " + strings.ToLower(pred.Description)

	var matches []Candidate
	for _, q := range candidates {
		score, ok := score(pred, q, question, fullText)
		if !ok || score < confidenceFloor {
			continue
		}
		if score > 1.0 {
			score = 1.0
		}
		matches = append(matches, Candidate{Quote: q, Confidence: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > maxCandidatesKept {
		matches = matches[:maxCandidatesKept]
	}
	return matches
}

// score computes the confidence that pred and q price the same proposition.
// Returns ok=false when the pairing must be rejected outright.
func score(pred domain.BinaryMarket, q domain.BookQuote, question, fullText string) (float64, bool) {
	teamMatches := countTeamMatches(pred.Teams, q.Teams)

	// Game-specific markets name both sides; requiring both teams prevents
	// "Brighton at Sunderland" matching "Arsenal at Brighton".
	if isGameMarket(pred.Subtype, q.MarketType, question) && len(pred.Teams) >= 2 && teamMatches < 2 {
		return 0, false
	}

	var s float64
	switch {
	case teamMatches >= 2:
		s += weightBothTeams
	case teamMatches == 1:
		s += weightOneTeam
	default:
		return 0, false
	}

	s += normalize.SimilarityFromTokens(pred.TokenSet, q.TokenSet) * weightTextSim

	// Prop quotes carry the player name in Description.
	if q.Description != "" && strings.Contains(fullText, strings.ToLower(q.Description)) {
		s += weightPlayerName
	}

	if q.Point != nil && strings.Contains(fullText, strconv.FormatFloat(*q.Point, 'g', -1, 64)) {
		s += weightPointLine
	}

	outcome := strings.ToLower(q.OutcomeName)
	switch {
	case strings.Contains(question, "over") && outcome == "over":
		s += weightOverUnder
	case strings.Contains(question, "under") && outcome == "under":
		s += weightOverUnder
	case strings.Contains(question, "win") || strings.Contains(question, "winner"):
		if q.MarketType == domain.MarketMoneyline {
			s += weightWinKeyword
		}
	}

	return s, true
}

// countTeamMatches counts how many prediction teams appear among the quote's
// teams, each counted at most once. Substring containment either way counts:
// "la clippers" vs "los angeles clippers" style mismatches are common.
func countTeamMatches(predTeams, quoteTeams []string) int {
	n := 0
	for _, pt := range predTeams {
		if pt == "" {
			continue
		}
		for _, qt := range quoteTeams {
			if qt == "" {
				continue
			}
			if strings.Contains(qt, pt) || strings.Contains(pt, qt) {
				n++
				break
			}
		}
	}
	return n
}

func isGameMarket(predType, quoteType domain.MarketType, question string) bool {
	switch predType {
	case domain.MarketMoneyline, domain.MarketTotals, domain.MarketSpreads, domain.MarketWinningMargin:
		return true
	}
	if strings.Contains(question, "winner") || strings.Contains(question, "win") {
		return true
	}
	switch quoteType {
	case domain.MarketMoneyline, domain.MarketTotals, domain.MarketSpreads:
		return true
	}
	return false
}
