package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/fairodds"
	"github.com/oddsync/arbscan/internal/match"
	"github.com/oddsync/arbscan/internal/normalize"
)

func testScanner() *Scanner {
	return New(normalize.New(), domain.DefaultFees(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func lakersMarket(n *normalize.Normalizer, yes, no float64) domain.BinaryMarket {
	question := "Will the Lakers beat the Celtics?"
	return domain.BinaryMarket{
		Source:   domain.SourcePolymarket,
		ID:       "poly-lal-bos",
		Question: question,
		Outcomes: [2]string{"Yes", "No"},
		Prices:   [2]float64{yes, no},
		Teams:    []string{"los angeles lakers", "boston celtics"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketMoneyline,
		YesLabel: "Los Angeles Lakers",
		TokenSet: n.TokenSet(question),
	}
}

func bookH2H(n *normalize.Normalizer, book, outcome string, prob float64) domain.BookQuote {
	return domain.BookQuote{
		Bookmaker:    book,
		SportKey:     "basketball_nba",
		Sport:        domain.SportNBA,
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Los Angeles Lakers",
		CommenceTime: time.Now().Add(6 * time.Hour),
		MarketType:   domain.MarketMoneyline,
		OutcomeName:  outcome,
		ImpliedProb:  prob,
		Teams:        []string{"los angeles lakers", "boston celtics"},
		TokenSet:     n.TokenSet("Los Angeles Lakers Boston Celtics " + outcome),
	}
}

func TestScanFindsPredictionBookArb(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	// The book prices the Lakers at 0.4545 implied while the prediction
	// market sells NO (Celtics) at 0.45: buying both locks in ~9.5% gross.
	snap := Snapshot{
		Polymarket: []domain.BinaryMarket{lakersMarket(n, 0.58, 0.45)},
		Books: []domain.BookQuote{
			bookH2H(n, "pinnacle", "Los Angeles Lakers", 0.4545),
			bookH2H(n, "pinnacle", "Boston Celtics", 0.52),
		},
	}

	res := s.Scan(context.Background(), snap, DefaultParams())
	if len(res.Opportunities) != 1 {
		t.Fatalf("expected exactly one opportunity, got %d: %+v", len(res.Opportunities), res.Opportunities)
	}

	opp := res.Opportunities[0]
	if opp.Type != domain.OpportunityArb {
		t.Errorf("Type = %q, want arb", opp.Type)
	}
	if math.Abs(opp.GrossArbPct-9.55) > 0.01 {
		t.Errorf("GrossArbPct = %v, want about 9.55", opp.GrossArbPct)
	}
	if opp.NetArbPct >= opp.GrossArbPct {
		t.Errorf("NetArbPct %v should be below gross %v after the platform fee", opp.NetArbPct, opp.GrossArbPct)
	}
	// The book took the Lakers, so the prediction leg must be the NO side.
	if opp.PlatformA.Side != "Boston Celtics" {
		t.Errorf("PlatformA.Side = %q, want the NO-side team", opp.PlatformA.Side)
	}
	if opp.PlatformA.Price != 0.45 {
		t.Errorf("PlatformA.Price = %v, want the NO price 0.45", opp.PlatformA.Price)
	}
	if opp.Stakes == nil {
		t.Error("expected a stake split for an arb")
	}
	if res.Meta.ArbCount != 1 || res.Meta.EVCount != 0 {
		t.Errorf("meta counts = (%d arbs, %d evs), want (1, 0)", res.Meta.ArbCount, res.Meta.EVCount)
	}
}

func TestScanDropsStaleArbs(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	// 0.40 + 0.40 prices imply a 20% arb, which only happens when one side
	// is stale.
	snap := Snapshot{
		Polymarket: []domain.BinaryMarket{lakersMarket(n, 0.50, 0.40)},
		Books: []domain.BookQuote{
			bookH2H(n, "pinnacle", "Los Angeles Lakers", 0.40),
		},
	}

	res := s.Scan(context.Background(), snap, DefaultParams())
	if len(res.Opportunities) != 0 {
		t.Errorf("expected the stale 20%% arb to be dropped, got %+v", res.Opportunities)
	}
}

func TestScanSkipsIlliquidMarkets(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	// Sides summing to 0.70 mean a wide spread, not a real 30% arb.
	snap := Snapshot{
		Polymarket: []domain.BinaryMarket{lakersMarket(n, 0.40, 0.30)},
		Books: []domain.BookQuote{
			bookH2H(n, "pinnacle", "Los Angeles Lakers", 0.45),
		},
	}

	res := s.Scan(context.Background(), snap, DefaultParams())
	if len(res.Opportunities) != 0 {
		t.Errorf("expected illiquid market skipped, got %+v", res.Opportunities)
	}
}

func TestFindBookEV(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	pred := lakersMarket(n, 0.40, 0.50)
	quotes := []domain.BookQuote{
		bookH2H(n, "pinnacle", "Los Angeles Lakers", 0.50),
		bookH2H(n, "pinnacle", "Boston Celtics", 0.62),
		bookH2H(n, "draftkings", "Los Angeles Lakers", 0.52),
		bookH2H(n, "draftkings", "Boston Celtics", 0.64),
	}
	ix := match.NewIndex(quotes)
	fair := fairodds.Build(quotes)

	opps := s.findBookEV([]domain.BinaryMarket{pred}, ix, fair, DefaultParams())
	if len(opps) != 1 {
		t.Fatalf("expected one +EV opportunity, got %d: %+v", len(opps), opps)
	}

	opp := opps[0]
	if opp.Type != domain.OpportunityEV {
		t.Errorf("Type = %q, want ev", opp.Type)
	}
	// Sharp fair: Celtics 0.62/1.12. Buying NO at 0.50 with the 2% fee nets
	// about +9.6%.
	if math.Abs(opp.EVPct-9.607) > 0.01 {
		t.Errorf("EVPct = %v, want about 9.607", opp.EVPct)
	}
	if math.Abs(opp.ConsensusProb-0.5536) > 0.001 {
		t.Errorf("ConsensusProb = %v, want about 0.5536", opp.ConsensusProb)
	}
}

func TestFindBookEVDropsImplausibleEdges(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	pred := lakersMarket(n, 0.62, 0.30)
	quotes := []domain.BookQuote{
		bookH2H(n, "pinnacle", "Los Angeles Lakers", 0.70),
	}
	ix := match.NewIndex(quotes)

	// A hand-built fair index saying NO is 60% likely puts the edge at
	// triple digits, which can only be stale pricing.
	fair := fairodds.Index{
		{Event: "Los Angeles Lakers@Boston Celtics", Market: domain.MarketMoneyline}: {
			"Los Angeles Lakers": 0.40,
			"Boston Celtics":     0.60,
		},
	}

	if opps := s.findBookEV([]domain.BinaryMarket{pred}, ix, fair, DefaultParams()); len(opps) != 0 {
		t.Errorf("expected the oversized edge dropped, got %+v", opps)
	}
}

func TestFindCrossPredictionArbs(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	poly := lakersMarket(n, 0.45, 0.52)
	kalshiQuestion := "Lakers vs Celtics winner?"
	kalshi := domain.BinaryMarket{
		Source:   domain.SourceKalshi,
		ID:       "KXNBAGAME-LAL-BOS",
		Question: kalshiQuestion,
		Outcomes: [2]string{"Yes", "No"},
		Prices:   [2]float64{0.47, 0.48},
		Teams:    []string{"los angeles lakers", "boston celtics"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketMoneyline,
		TokenSet: n.TokenSet(kalshiQuestion),
	}

	opps := s.findCrossPredictionArbs(
		[]domain.BinaryMarket{poly}, []domain.BinaryMarket{kalshi}, DefaultParams())
	if len(opps) != 1 {
		t.Fatalf("expected one cross-platform arb, got %d: %+v", len(opps), opps)
	}

	opp := opps[0]
	if opp.MarketType != domain.MarketBinary {
		t.Errorf("MarketType = %q, want binary", opp.MarketType)
	}
	// Poly YES at 0.45 aligned with Kalshi YES at 0.47: the arb buys poly
	// YES and Kalshi NO at 0.48 for 7% gross.
	if math.Abs(opp.GrossArbPct-7.0) > 0.01 {
		t.Errorf("GrossArbPct = %v, want about 7.0", opp.GrossArbPct)
	}
	if opp.PlatformB.Name != "Kalshi" {
		t.Errorf("PlatformB.Name = %q, want Kalshi", opp.PlatformB.Name)
	}
	if opp.PlatformB.Side != "No" {
		t.Errorf("PlatformB.Side = %q, want No", opp.PlatformB.Side)
	}
	if opp.NetArbPct >= opp.GrossArbPct {
		t.Errorf("NetArbPct %v should be below gross %v after fees", opp.NetArbPct, opp.GrossArbPct)
	}
}

func TestFindCrossPredictionArbsRejectsDifferentGames(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	poly := lakersMarket(n, 0.45, 0.52)
	otherGame := domain.BinaryMarket{
		Source:   domain.SourceKalshi,
		ID:       "KXNBAGAME-LAL-MIL",
		Question: "Lakers vs Bucks winner?",
		Outcomes: [2]string{"Yes", "No"},
		Prices:   [2]float64{0.47, 0.48},
		Teams:    []string{"los angeles lakers", "milwaukee bucks"},
		Sport:    domain.SportNBA,
		Subtype:  domain.MarketMoneyline,
		TokenSet: n.TokenSet("Lakers vs Bucks winner?"),
	}

	opps := s.findCrossPredictionArbs(
		[]domain.BinaryMarket{poly}, []domain.BinaryMarket{otherGame}, DefaultParams())
	if len(opps) != 0 {
		t.Errorf("expected no arb across different games, got %+v", opps)
	}
}

func TestDedupeByIDKeepsHigherEdge(t *testing.T) {
	low := domain.Opportunity{ID: "a", Type: domain.OpportunityArb, NetArbPct: 2.0}
	high := domain.Opportunity{ID: "a", Type: domain.OpportunityArb, NetArbPct: 5.0}
	other := domain.Opportunity{ID: "b", Type: domain.OpportunityArb, NetArbPct: 1.0}

	got := dedupeByID([]domain.Opportunity{low, high, other})
	if len(got) != 2 {
		t.Fatalf("expected 2 after dedupe, got %d", len(got))
	}
	if got[0].NetArbPct != 5.0 {
		t.Errorf("kept edge = %v, want the higher 5.0", got[0].NetArbPct)
	}
}

func TestRankArbsBeforeEV(t *testing.T) {
	opps := []domain.Opportunity{
		{ID: "ev-big", Type: domain.OpportunityEV, EVPct: 20.0},
		{ID: "arb-small", Type: domain.OpportunityArb, NetArbPct: 1.0},
		{ID: "arb-big", Type: domain.OpportunityArb, NetArbPct: 4.0},
		{ID: "ev-small", Type: domain.OpportunityEV, EVPct: 3.0},
	}
	rank(opps)

	wantOrder := []string{"arb-big", "arb-small", "ev-big", "ev-small"}
	for i, want := range wantOrder {
		if opps[i].ID != want {
			t.Errorf("rank[%d] = %q, want %q", i, opps[i].ID, want)
		}
	}
}

func TestFilterSports(t *testing.T) {
	opps := []domain.Opportunity{
		{ID: "1", Sport: "NBA"},
		{ID: "2", Sport: "NFL"},
		{ID: "3", Sport: "NBA"},
	}

	got := filterSports(opps, []string{"nba"})
	if len(got) != 2 {
		t.Fatalf("expected 2 NBA opportunities, got %d", len(got))
	}
	for _, o := range got {
		if o.Sport != "NBA" {
			t.Errorf("filter let through %q", o.Sport)
		}
	}

	all := []domain.Opportunity{{ID: "1", Sport: "NBA"}, {ID: "2", Sport: "NFL"}}
	if got := filterSports(all, nil); len(got) != 2 {
		t.Errorf("empty filter should keep everything, got %d", len(got))
	}
}

func TestFindCrossBookArb(t *testing.T) {
	n := normalize.New()
	s := testScanner()

	quotes := []domain.BookQuote{
		bookH2H(n, "pinnacle", "Los Angeles Lakers", 0.46),
		bookH2H(n, "pinnacle", "Boston Celtics", 0.56),
		bookH2H(n, "draftkings", "Los Angeles Lakers", 0.55),
		bookH2H(n, "draftkings", "Boston Celtics", 0.49),
	}

	opps := s.findCrossBook(quotes, fairodds.Build(quotes), DefaultParams())
	if len(opps) == 0 {
		t.Fatal("expected a cross-book arb from 0.46 + 0.49 pricing")
	}

	opp := opps[0]
	if opp.Type != domain.OpportunityArb {
		t.Errorf("Type = %q, want arb", opp.Type)
	}
	if math.Abs(opp.GrossArbPct-5.0) > 0.01 {
		t.Errorf("GrossArbPct = %v, want about 5.0", opp.GrossArbPct)
	}
	if opp.PlatformA.Name == opp.PlatformB.Name {
		t.Error("both legs landed on the same bookmaker")
	}
}
