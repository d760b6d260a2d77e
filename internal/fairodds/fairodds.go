// Package fairodds estimates true outcome probabilities from sportsbook
// quotes by devigging sharp lines when available and falling back to a
// cross-book median consensus.
package fairodds

import (
	"sort"

	"github.com/oddsync/arbscan/internal/domain"
)

// Books with consistently low vig whose lines are trusted over consensus.
var sharpBooks = map[string]bool{
	"pinnacle": true,
	"lowvig":   true,
	"novig":    true,
}

// GroupKey identifies one market on one fixture.
type GroupKey struct {
	Event  string // away@home
	Market domain.MarketType
}

// Index maps each (event, market) group to devigged fair probabilities per
// outcome key. Probabilities within a group sum to 1.
type Index map[GroupKey]map[string]float64

// Lookup returns the fair probabilities for a market group.
func (ix Index) Lookup(event string, market domain.MarketType) (map[string]float64, bool) {
	probs, ok := ix[GroupKey{Event: event, Market: market}]
	return probs, ok
}

type bookProb struct {
	book string
	prob float64
}

// Build groups sportsbook quotes by fixture and market, devigs each group,
// and returns the resulting index. For each group it prefers sharp-book
// prices (Pinnacle first), otherwise takes the median across all books, then
// renormalizes so the group's probabilities sum to 1. Groups priced by fewer
// than two books, or whose probabilities sum to zero, are dropped.
func Build(quotes []domain.BookQuote) Index {
	groups := make(map[GroupKey]map[string][]bookProb)
	for _, q := range quotes {
		if !q.Priced() {
			continue
		}
		key := GroupKey{Event: q.EventKey(), Market: q.MarketType}
		if groups[key] == nil {
			groups[key] = make(map[string][]bookProb)
		}
		ok := q.OutcomeKey()
		groups[key][ok] = append(groups[key][ok], bookProb{book: q.Bookmaker, prob: q.ImpliedProb})
	}

	index := make(Index, len(groups))
	for key, outcomes := range groups {
		fair := devig(outcomes)
		if fair != nil {
			index[key] = fair
		}
	}
	return index
}

func devig(outcomes map[string][]bookProb) map[string]float64 {
	books := make(map[string]bool)
	for _, entries := range outcomes {
		for _, e := range entries {
			books[e.book] = true
		}
	}
	if len(books) < 2 {
		return nil
	}

	raw := make(map[string]float64, len(outcomes))
	total := 0.0

	// Sharp pass: use the sharpest available price per outcome.
	for okey, entries := range outcomes {
		if p, ok := sharpPrice(entries); ok {
			raw[okey] = p
			total += p
		}
	}

	// Consensus fallback: median implied probability per outcome.
	if len(raw) == 0 || total <= 0 {
		raw = make(map[string]float64, len(outcomes))
		total = 0
		for okey, entries := range outcomes {
			m := median(entries)
			raw[okey] = m
			total += m
		}
	}

	if total <= 0 {
		return nil
	}
	fair := make(map[string]float64, len(raw))
	for okey, p := range raw {
		fair[okey] = p / total
	}
	return fair
}

func sharpPrice(entries []bookProb) (float64, bool) {
	var first *bookProb
	for i, e := range entries {
		if !sharpBooks[e.book] {
			continue
		}
		if e.book == "pinnacle" {
			return e.prob, true
		}
		if first == nil {
			first = &entries[i]
		}
	}
	if first != nil {
		return first.prob, true
	}
	return 0, false
}

func median(entries []bookProb) float64 {
	if len(entries) == 0 {
		return 0
	}
	probs := make([]float64, 0, len(entries))
	for _, e := range entries {
		probs = append(probs, e.prob)
	}
	sort.Float64s(probs)
	return probs[len(probs)/2]
}
