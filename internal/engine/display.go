package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
)

// sportDisplay maps a raw sport key to the short label used in results.
func sportDisplay(sportKey string) string {
	s := strings.ToLower(sportKey)
	switch {
	case strings.Contains(s, "nba") || strings.Contains(s, "basketball"):
		return "NBA"
	case strings.Contains(s, "nfl") || strings.Contains(s, "football"):
		return "NFL"
	case strings.Contains(s, "mlb") || strings.Contains(s, "baseball"):
		return "MLB"
	case strings.Contains(s, "nhl") || strings.Contains(s, "hockey"):
		return "NHL"
	case strings.Contains(s, "soccer") || strings.Contains(s, "mls") || strings.Contains(s, "epl"):
		return "Soccer"
	case strings.Contains(s, "mma") || strings.Contains(s, "ufc"):
		return "MMA"
	}
	up := strings.ToUpper(strings.ReplaceAll(sportKey, "_", " "))
	if up == "" {
		return "Sports"
	}
	if len(up) > 10 {
		up = up[:10]
	}
	return up
}

// timeInfo annotates an event time relative to now: already started means
// the market is live, otherwise a compact countdown like "2d", "5h", "12m".
func timeInfo(commence time.Time, now time.Time) (isLive bool, display string) {
	if commence.IsZero() {
		return false, ""
	}
	if commence.Before(now) {
		return true, "LIVE"
	}
	d := commence.Sub(now)
	switch {
	case d >= 24*time.Hour:
		return false, fmt.Sprintf("%dd", int(d.Hours())/24)
	case d >= time.Hour:
		return false, fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return false, fmt.Sprintf("%dm", int(d.Minutes()))
	}
}

// bookSideLabel renders a sportsbook outcome for display: "Over 215.5",
// "Thunder -5.5", or the bare outcome name.
func bookSideLabel(q domain.BookQuote) string {
	if q.Point == nil {
		return q.OutcomeName
	}
	lower := strings.ToLower(q.OutcomeName)
	if lower == "over" || lower == "under" {
		return fmt.Sprintf("%s %g", q.OutcomeName, *q.Point)
	}
	sign := ""
	if *q.Point > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s %s%g", q.OutcomeName, sign, *q.Point)
}

// predSideLabel translates a raw Yes/No side into a meaningful label: the
// over/under for totals, the team name for moneylines.
func predSideLabel(pred domain.BinaryMarket, yes bool) string {
	raw := "No"
	if yes {
		raw = "Yes"
	}

	if pred.Subtype == domain.MarketTotals && pred.PointLine != nil {
		if yes {
			return fmt.Sprintf("Over %g", *pred.PointLine)
		}
		return fmt.Sprintf("Under %g", *pred.PointLine)
	}

	if pred.Subtype == domain.MarketMoneyline && pred.YesLabel != "" {
		yesTeam := strings.TrimSpace(pred.YesLabel)
		if yes {
			return yesTeam
		}
		// NO is the other team; find it in the extracted team list.
		lower := strings.ToLower(yesTeam)
		for _, t := range pred.Teams {
			if !strings.Contains(t, lower) {
				return titleCase(t)
			}
		}
		return "Not " + yesTeam
	}

	return raw
}

// eventLabel builds the result's event string from the fixture name and the
// market flavor.
func eventLabel(base string, predType domain.MarketType, line *float64) string {
	switch {
	case predType == domain.MarketTotals && line != nil:
		return fmt.Sprintf("%s - O/U %g", base, *line)
	case predType == domain.MarketMoneyline:
		return base + " - ML"
	case predType == domain.MarketSpreads:
		return base + " - Spread"
	case predType == domain.MarketPlayerProps:
		return base + " - Props"
	}
	return base
}

// marketLabel renders a market type for cross-book event strings.
func marketLabel(t domain.MarketType) string {
	if t == domain.MarketMoneyline {
		return "ML"
	}
	return titleCase(strings.ReplaceAll(string(t), "_", " "))
}

// arbRisk grades a prediction-vs-sportsbook arb.
func arbRisk(grossPct, confidence float64, source domain.Source) (domain.ResolutionRisk, string) {
	switch {
	case grossPct > 10:
		return domain.RiskHigh, "Likely stale pricing: an arb this large (>10%) usually means one side has outdated odds"
	case confidence < 0.6:
		return domain.RiskHigh, "Low match confidence: verify markets reference the same event and conditions"
	case confidence < 0.8:
		return domain.RiskMedium, "Moderate match confidence: check resolution criteria on both platforms"
	case source != domain.SourceSportsbook:
		return domain.RiskLow, "Different platforms may use different data sources for settlement"
	}
	return domain.RiskLow, ""
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// truncate limits a label to n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// sourceName renders a Source as a display name.
func sourceName(src domain.Source) string {
	return titleCase(string(src))
}
