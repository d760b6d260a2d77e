package fairodds

import (
	"math"
	"testing"

	"github.com/oddsync/arbscan/internal/domain"
)

func quote(book, home, away, outcome string, prob float64) domain.BookQuote {
	return domain.BookQuote{
		Bookmaker:   book,
		HomeTeam:    home,
		AwayTeam:    away,
		MarketType:  domain.MarketMoneyline,
		OutcomeName: outcome,
		ImpliedProb: prob,
	}
}

func TestBuildDevigsSumsToOne(t *testing.T) {
	quotes := []domain.BookQuote{
		quote("pinnacle", "Celtics", "Lakers", "Lakers", 0.55),
		quote("pinnacle", "Celtics", "Lakers", "Celtics", 0.50),
		quote("draftkings", "Celtics", "Lakers", "Lakers", 0.57),
		quote("draftkings", "Celtics", "Lakers", "Celtics", 0.52),
	}

	ix := Build(quotes)
	probs, ok := ix.Lookup("Lakers@Celtics", domain.MarketMoneyline)
	if !ok {
		t.Fatal("expected a fair-odds group for the fixture")
	}

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("fair probabilities sum to %v, want 1", sum)
	}
}

func TestBuildPrefersSharpBooks(t *testing.T) {
	// Pinnacle says 0.55/0.50; the recreational book says 0.70/0.40. The fair
	// line must reflect Pinnacle's ratio, not the consensus.
	quotes := []domain.BookQuote{
		quote("pinnacle", "Celtics", "Lakers", "Lakers", 0.55),
		quote("pinnacle", "Celtics", "Lakers", "Celtics", 0.50),
		quote("bovada", "Celtics", "Lakers", "Lakers", 0.70),
		quote("bovada", "Celtics", "Lakers", "Celtics", 0.40),
	}

	probs, ok := Build(quotes).Lookup("Lakers@Celtics", domain.MarketMoneyline)
	if !ok {
		t.Fatal("expected a fair-odds group")
	}

	want := 0.55 / 1.05
	if got := probs["Lakers"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("fair Lakers prob = %v, want %v from the sharp line", got, want)
	}
}

func TestBuildPinnacleBeatsOtherSharps(t *testing.T) {
	quotes := []domain.BookQuote{
		quote("lowvig", "Celtics", "Lakers", "Lakers", 0.60),
		quote("lowvig", "Celtics", "Lakers", "Celtics", 0.45),
		quote("pinnacle", "Celtics", "Lakers", "Lakers", 0.50),
		quote("pinnacle", "Celtics", "Lakers", "Celtics", 0.52),
	}

	probs, ok := Build(quotes).Lookup("Lakers@Celtics", domain.MarketMoneyline)
	if !ok {
		t.Fatal("expected a fair-odds group")
	}

	want := 0.50 / 1.02
	if got := probs["Lakers"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("fair Lakers prob = %v, want Pinnacle's %v over lowvig", got, want)
	}
}

func TestBuildMedianFallback(t *testing.T) {
	// No sharp book in the group: the per-outcome median decides.
	quotes := []domain.BookQuote{
		quote("draftkings", "Celtics", "Lakers", "Lakers", 0.50),
		quote("fanduel", "Celtics", "Lakers", "Lakers", 0.56),
		quote("betmgm", "Celtics", "Lakers", "Lakers", 0.60),
		quote("draftkings", "Celtics", "Lakers", "Celtics", 0.50),
		quote("fanduel", "Celtics", "Lakers", "Celtics", 0.52),
		quote("betmgm", "Celtics", "Lakers", "Celtics", 0.54),
	}

	probs, ok := Build(quotes).Lookup("Lakers@Celtics", domain.MarketMoneyline)
	if !ok {
		t.Fatal("expected a fair-odds group")
	}

	want := 0.56 / (0.56 + 0.52)
	if got := probs["Lakers"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("fair Lakers prob = %v, want median-based %v", got, want)
	}
}

func TestBuildRequiresTwoBooks(t *testing.T) {
	quotes := []domain.BookQuote{
		quote("pinnacle", "Celtics", "Lakers", "Lakers", 0.55),
		quote("pinnacle", "Celtics", "Lakers", "Celtics", 0.50),
	}
	if _, ok := Build(quotes).Lookup("Lakers@Celtics", domain.MarketMoneyline); ok {
		t.Error("a single-book group must not produce fair odds")
	}
}

func TestBuildSkipsUnpricedQuotes(t *testing.T) {
	quotes := []domain.BookQuote{
		quote("pinnacle", "Celtics", "Lakers", "Lakers", 0),
		quote("draftkings", "Celtics", "Lakers", "Lakers", 0),
	}
	if got := Build(quotes); len(got) != 0 {
		t.Errorf("expected an empty index, got %v", got)
	}
}

func TestBuildKeepsLinesDistinct(t *testing.T) {
	p1, p2 := 215.5, 220.5
	over215 := quote("fanduel", "Celtics", "Lakers", "Over", 0.52)
	over215.MarketType = domain.MarketTotals
	over215.Point = &p1
	under215 := quote("fanduel", "Celtics", "Lakers", "Under", 0.52)
	under215.MarketType = domain.MarketTotals
	under215.Point = &p1
	over220 := quote("draftkings", "Celtics", "Lakers", "Over", 0.40)
	over220.MarketType = domain.MarketTotals
	over220.Point = &p2
	under220 := quote("draftkings", "Celtics", "Lakers", "Under", 0.64)
	under220.MarketType = domain.MarketTotals
	under220.Point = &p2

	probs, ok := Build([]domain.BookQuote{over215, under215, over220, under220}).
		Lookup("Lakers@Celtics", domain.MarketTotals)
	if !ok {
		t.Fatal("expected a totals group")
	}
	if len(probs) != 4 {
		t.Errorf("expected 4 distinct outcome keys across lines, got %d: %v", len(probs), probs)
	}
	if _, ok := probs["Over|215.5"]; !ok {
		t.Errorf("missing line-qualified outcome key, got %v", probs)
	}
}
