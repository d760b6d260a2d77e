package match

import (
	"testing"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
)

func tokens(n *normalize.Normalizer, text string) map[string]bool {
	return n.TokenSet(text)
}

func h2hQuote(n *normalize.Normalizer, home, away, outcome string) domain.BookQuote {
	return domain.BookQuote{
		Bookmaker:   "pinnacle",
		Sport:       domain.SportNBA,
		HomeTeam:    home,
		AwayTeam:    away,
		MarketType:  domain.MarketMoneyline,
		OutcomeName: outcome,
		ImpliedProb: 0.5,
		Teams:       []string{n.Canonicalize(home), n.Canonicalize(away)},
		TokenSet:    tokens(n, away+" "+home+" "+outcome),
	}
}

func TestMatchRequiresBothTeamsOnGameMarkets(t *testing.T) {
	n := normalize.New()

	pred := domain.BinaryMarket{
		Question: "Will the Lakers beat the Celtics?",
		Teams:    []string{"los angeles lakers", "boston celtics"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketMoneyline,
		TokenSet: tokens(n, "Will the Lakers beat the Celtics?"),
	}

	sameGame := h2hQuote(n, "Boston Celtics", "Los Angeles Lakers", "Los Angeles Lakers")
	oneTeamOnly := h2hQuote(n, "Boston Celtics", "Milwaukee Bucks", "Boston Celtics")

	got := Match(pred, []domain.BookQuote{sameGame, oneTeamOnly})
	if len(got) != 1 {
		t.Fatalf("expected exactly the same-game quote to match, got %d matches", len(got))
	}
	if got[0].Quote.AwayTeam != "Los Angeles Lakers" {
		t.Errorf("matched the wrong quote: %+v", got[0].Quote)
	}
}

func TestMatchConfidenceOrdering(t *testing.T) {
	n := normalize.New()

	pred := domain.BinaryMarket{
		Question: "Will the Lakers beat the Celtics?",
		Teams:    []string{"los angeles lakers", "boston celtics"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketMoneyline,
		TokenSet: tokens(n, "Will the Lakers beat the Celtics?"),
	}

	strong := h2hQuote(n, "Boston Celtics", "Los Angeles Lakers", "Los Angeles Lakers")
	weaker := strong
	weaker.MarketType = domain.MarketTotals
	weaker.OutcomeName = "Over"
	weaker.TokenSet = tokens(n, "totals over")

	got := Match(pred, []domain.BookQuote{weaker, strong})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Confidence < got[1].Confidence {
		t.Errorf("matches not ordered best first: %v then %v", got[0].Confidence, got[1].Confidence)
	}
	if got[0].Quote.MarketType != domain.MarketMoneyline {
		t.Errorf("expected the moneyline quote first, got %q", got[0].Quote.MarketType)
	}
}

func TestMatchConfidenceFloor(t *testing.T) {
	n := normalize.New()

	// A one-team futures-ish pairing with no text overlap scores 0.3 and
	// must fall below the floor.
	pred := domain.BinaryMarket{
		Question: "Lakers season outcome",
		Teams:    []string{"los angeles lakers"},
		Subtype:  domain.MarketUnknown,
		TokenSet: tokens(n, "season outcome"),
	}
	q := domain.BookQuote{
		MarketType:  domain.MarketPlayerPoints,
		OutcomeName: "Over",
		Teams:       []string{"los angeles lakers", "boston celtics"},
		TokenSet:    tokens(n, "completely different text"),
	}

	if got := Match(pred, []domain.BookQuote{q}); len(got) != 0 {
		t.Errorf("expected no matches below the confidence floor, got %v", got)
	}
}

func TestMatchCapsCandidates(t *testing.T) {
	n := normalize.New()

	pred := domain.BinaryMarket{
		Question: "Will the Lakers beat the Celtics?",
		Teams:    []string{"los angeles lakers", "boston celtics"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketMoneyline,
		TokenSet: tokens(n, "Will the Lakers beat the Celtics?"),
	}

	books := []string{"pinnacle", "draftkings", "fanduel", "betmgm", "caesars", "bovada", "lowvig"}
	var quotes []domain.BookQuote
	for _, b := range books {
		q := h2hQuote(n, "Boston Celtics", "Los Angeles Lakers", "Los Angeles Lakers")
		q.Bookmaker = b
		quotes = append(quotes, q)
	}

	got := Match(pred, quotes)
	if len(got) != 5 {
		t.Errorf("expected the candidate list capped at 5, got %d", len(got))
	}
}

func TestMatchPlayerPropSignals(t *testing.T) {
	n := normalize.New()

	pred := domain.BinaryMarket{
		Question: "Will LeBron James score over 25.5 points against the Celtics?",
		Teams:    []string{"boston celtics"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketPlayerProps,
		TokenSet: tokens(n, "Will LeBron James score over 25.5 points against the Celtics?"),
	}

	point := 25.5
	withPlayer := domain.BookQuote{
		Bookmaker:   "draftkings",
		Sport:       domain.SportNBA,
		MarketType:  domain.MarketPlayerPoints,
		OutcomeName: "Over",
		Description: "LeBron James",
		Point:       &point,
		ImpliedProb: 0.5,
		Teams:       []string{"boston celtics", "los angeles lakers"},
		TokenSet:    tokens(n, "lakers celtics over"),
	}
	withoutPlayer := withPlayer
	withoutPlayer.Description = "Anthony Davis"

	got := Match(pred, []domain.BookQuote{withoutPlayer, withPlayer})
	if len(got) == 0 {
		t.Fatal("expected at least the named-player quote to match")
	}
	if got[0].Quote.Description != "LeBron James" {
		t.Errorf("expected the named-player quote first, got %q", got[0].Quote.Description)
	}
}

func TestIndexCandidates(t *testing.T) {
	n := normalize.New()

	nbaH2H := h2hQuote(n, "Boston Celtics", "Los Angeles Lakers", "Los Angeles Lakers")
	nbaTotal := nbaH2H
	nbaTotal.MarketType = domain.MarketTotals
	point := 215.5
	nbaTotal.Point = &point
	nbaTotal.OutcomeName = "Over"
	nhlQuote := h2hQuote(n, "Boston Bruins", "Edmonton Oilers", "Edmonton Oilers")
	nhlQuote.Sport = domain.SportNHL
	nhlQuote.Teams = []string{"boston bruins", "edmonton oilers"}

	ix := NewIndex([]domain.BookQuote{nbaH2H, nbaTotal, nhlQuote})

	t.Run("moneyline gets moneyline only", func(t *testing.T) {
		pred := domain.BinaryMarket{
			Teams:   []string{"los angeles lakers", "boston celtics"},
			Sport:   domain.SportNBA,
			Subtype: domain.MarketMoneyline,
		}
		got := ix.Candidates(pred)
		if len(got) != 1 || got[0].MarketType != domain.MarketMoneyline {
			t.Errorf("Candidates = %v, want just the h2h quote", got)
		}
	})

	t.Run("totals require a matching line", func(t *testing.T) {
		line := 215.5
		pred := domain.BinaryMarket{
			Teams:     []string{"los angeles lakers", "boston celtics"},
			Sport:     domain.SportNBA,
			Subtype:   domain.MarketTotals,
			PointLine: &line,
		}
		got := ix.Candidates(pred)
		if len(got) != 1 || got[0].MarketType != domain.MarketTotals {
			t.Errorf("Candidates = %v, want just the totals quote", got)
		}

		otherLine := 220.5
		pred.PointLine = &otherLine
		if got := ix.Candidates(pred); len(got) != 0 {
			t.Errorf("Candidates with mismatched line = %v, want none", got)
		}
	})

	t.Run("line market without a line yields nothing", func(t *testing.T) {
		pred := domain.BinaryMarket{
			Question: "Lakers Celtics game total",
			Teams:    []string{"los angeles lakers", "boston celtics"},
			Sport:    domain.SportNBA,
			Subtype:  domain.MarketTotals,
		}
		if got := ix.Candidates(pred); len(got) != 0 {
			t.Errorf("Candidates = %v, want none", got)
		}
	})

	t.Run("futures have no counterpart", func(t *testing.T) {
		pred := domain.BinaryMarket{
			Teams:   []string{"los angeles lakers"},
			Sport:   domain.SportNBA,
			Subtype: domain.MarketFutures,
		}
		if got := ix.Candidates(pred); got != nil {
			t.Errorf("Candidates = %v, want nil", got)
		}
	})

	t.Run("soccer moneylines excluded", func(t *testing.T) {
		pred := domain.BinaryMarket{
			Teams:   []string{"arsenal"},
			Sport:   domain.SportSoccer,
			Subtype: domain.MarketMoneyline,
		}
		if got := ix.Candidates(pred); got != nil {
			t.Errorf("Candidates = %v, want nil", got)
		}
	})

	t.Run("sport mismatch excluded", func(t *testing.T) {
		pred := domain.BinaryMarket{
			Teams:   []string{"edmonton oilers"},
			Sport:   domain.SportNBA,
			Subtype: domain.MarketMoneyline,
		}
		if got := ix.Candidates(pred); len(got) != 0 {
			t.Errorf("Candidates = %v, want none across sports", got)
		}
	})

	t.Run("no teams no candidates", func(t *testing.T) {
		pred := domain.BinaryMarket{Subtype: domain.MarketMoneyline}
		if got := ix.Candidates(pred); got != nil {
			t.Errorf("Candidates = %v, want nil", got)
		}
	})
}
