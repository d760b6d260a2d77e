// Package classify infers sport categories, market types, and point lines
// from raw market text and API sport keys.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
)

// sportKeyToCategory maps The Odds API sport keys to categories.
var sportKeyToCategory = map[string]domain.SportCategory{
	"basketball_nba":          domain.SportNBA,
	"americanfootball_nfl":    domain.SportNFL,
	"baseball_mlb":            domain.SportMLB,
	"icehockey_nhl":           domain.SportNHL,
	"soccer_usa_mls":          domain.SportSoccer,
	"soccer_epl":              domain.SportSoccer,
	"mma_mixed_martial_arts":  domain.SportMMA,
}

// categoryKeywords is checked in order; the first category with a keyword hit
// wins, so the table is a slice rather than a map.
var categoryKeywords = []struct {
	category domain.SportCategory
	keywords []string
}{
	{domain.SportNBA, []string{"nba", "basketball"}},
	{domain.SportNFL, []string{"nfl", "football", "touchdowns", "yards"}},
	{domain.SportMLB, []string{"mlb", "baseball", "runs"}},
	{domain.SportNHL, []string{"nhl", "hockey", "stanley cup"}},
	{domain.SportSoccer, []string{"soccer", "epl", "mls", "premier league"}},
	{domain.SportMMA, []string{"mma", "ufc"}},
}

var (
	futuresRE = regexp.MustCompile(`(?i)championship|stanley cup|world series|super bowl|` +
		`mvp|most valuable|make.*playoffs|win.*20\d\d|` +
		`nba finals|win.*title|win.*division|win.*conference`)
	pointLineRE = regexp.MustCompile(`(?i)(?:over|under|spread|cover|[+-])\s*(\d+(?:\.\d+)?)`)
	overRE      = regexp.MustCompile(`\bover\b`)
	underRE     = regexp.MustCompile(`\bunder\b`)
)

var playerStatKeywords = []string{"points", "rebounds", "assists", "threes", "strikeouts"}

// SportFromKey maps an Odds API sport key to a category. Unrecognized keys
// return the empty category.
func SportFromKey(key string) domain.SportCategory {
	return sportKeyToCategory[key]
}

// Classifier detects sport categories from market text, using keyword tables
// first and team membership as a fallback.
type Classifier struct {
	norm *normalize.Normalizer
}

// New returns a Classifier using the given normalizer for team extraction.
func New(n *normalize.Normalizer) *Classifier {
	return &Classifier{norm: n}
}

// DetectSport returns the sport category for a piece of market text, or the
// empty category when neither keywords nor team names identify one.
func (c *Classifier) DetectSport(text string) domain.SportCategory {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	for _, team := range c.norm.ExtractTeams(lower) {
		if sport, ok := normalize.SportForTeam(team); ok {
			return sport
		}
	}
	return ""
}

// InferMarketType classifies a prediction-market question. Rule order is
// load-bearing: futures phrasing often contains "win", and "cover" contains
// "over", so those checks run before the generic ones.
func InferMarketType(question string) domain.MarketType {
	q := strings.ToLower(question)
	hasOver := overRE.MatchString(q)
	hasUnder := underRE.MatchString(q)

	if futuresRE.MatchString(question) {
		return domain.MarketFutures
	}
	if strings.Contains(q, "spread") || strings.Contains(q, "cover") {
		return domain.MarketSpreads
	}
	if strings.Contains(q, "total") && (hasOver || hasUnder) {
		return domain.MarketTotals
	}
	for _, kw := range playerStatKeywords {
		if strings.Contains(q, kw) && (hasOver || hasUnder) {
			return domain.MarketPlayerProps
		}
	}
	if (hasOver || hasUnder) && pointLineRE.MatchString(question) {
		return domain.MarketTotals
	}
	for _, kw := range []string{"win", "winner", "beat", "defeat"} {
		if strings.Contains(q, kw) {
			return domain.MarketMoneyline
		}
	}
	return domain.MarketUnknown
}

// ExtractPointLine pulls the numeric line out of text like "over 215.5" or
// "-3.5". Returns nil when no line is present.
func ExtractPointLine(text string) *float64 {
	m := pointLineRE.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// HasOver and HasUnder report whole-word over/under mentions in lowercase
// text; the side aligner uses them for explicit totals alignment.
func HasOver(lower string) bool  { return overRE.MatchString(lower) }
func HasUnder(lower string) bool { return underRE.MatchString(lower) }
