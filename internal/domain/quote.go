package domain

import (
	"fmt"
	"time"
)

// Source identifies the venue a quote came from.
type Source string

const (
	SourcePolymarket Source = "polymarket"
	SourceKalshi     Source = "kalshi"
	SourceSportsbook Source = "sportsbook"
)

// SportCategory is the normalized league/sport bucket used to gate matching.
// An empty value means the sport could not be determined.
type SportCategory string

const (
	SportNBA    SportCategory = "nba"
	SportNFL    SportCategory = "nfl"
	SportMLB    SportCategory = "mlb"
	SportNHL    SportCategory = "nhl"
	SportSoccer SportCategory = "soccer"
	SportMMA    SportCategory = "mma"
)

// MarketType classifies what a market settles on. Prediction-market subtypes
// and sportsbook market keys share this namespace so the compatibility table
// in internal/match can relate them directly.
type MarketType string

const (
	MarketMoneyline     MarketType = "h2h"
	MarketSpreads       MarketType = "spreads"
	MarketTotals        MarketType = "totals"
	MarketWinningMargin MarketType = "winning_margin"
	MarketFirstHalf     MarketType = "1h_totals"
	MarketPlayerProps   MarketType = "player_props"
	MarketFutures       MarketType = "futures"
	MarketUnknown       MarketType = "unknown"

	// MarketBinary labels cross-prediction-market pairings, where the two
	// venues' own subtypes already agreed.
	MarketBinary MarketType = "binary"

	// Sportsbook player-prop market keys (The Odds API naming).
	MarketPlayerPoints   MarketType = "player_points"
	MarketPlayerRebounds MarketType = "player_rebounds"
	MarketPlayerAssists  MarketType = "player_assists"
	MarketPlayerThrees   MarketType = "player_threes"
)

// BinaryMarket is a two-sided prediction market quote: a Yes/No contract with
// implied probabilities for each side. Instances are built once by the
// platform fetchers, classified at construction, and treated as immutable.
type BinaryMarket struct {
	Source      Source
	ID          string
	Question    string
	Description string
	Outcomes    [2]string  // e.g. ["Yes","No"]
	Prices      [2]float64 // implied probabilities, yes then no

	Teams     []string       // canonical team names, first-seen order
	Sport     SportCategory  // "" when undetected
	Subtype   MarketType
	PointLine *float64       // Kalshi floor_strike or text-extracted line
	YesLabel  string         // Kalshi no_sub_title: what YES refers to
	TokenSet  map[string]bool

	EndDate   time.Time
	Volume    float64
	Liquidity float64
	URL       string
}

// YesPrice returns the implied probability of the YES side.
func (m BinaryMarket) YesPrice() float64 { return m.Prices[0] }

// NoPrice returns the implied probability of the NO side.
func (m BinaryMarket) NoPrice() float64 { return m.Prices[1] }

// Priced reports whether the YES side carries a usable probability.
func (m BinaryMarket) Priced() bool {
	return m.Prices[0] > 0 && m.Prices[0] < 1
}

// Liquid reports whether the two sides sum close enough to 1 to trust the
// quote. A wide bid-ask spread (sum well below 1) produces phantom arbs.
func (m BinaryMarket) Liquid() bool {
	return m.Prices[0]+m.Prices[1] >= 0.90
}

// BookQuote is a single priced outcome at one sportsbook: one row per
// (event, bookmaker, market, outcome).
type BookQuote struct {
	Bookmaker      string // API key, e.g. "pinnacle"
	BookmakerTitle string // display name, e.g. "Pinnacle"
	SportKey       string // raw API sport key, e.g. "basketball_nba"
	Sport          SportCategory

	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time

	MarketType  MarketType
	OutcomeName string
	Description string   // player name on prop markets
	Point       *float64 // line for spreads/totals/props

	AmericanOdds float64
	DecimalOdds  float64
	ImpliedProb  float64

	IsProp   bool
	Teams    []string
	TokenSet map[string]bool
}

// EventKey identifies the fixture a quote belongs to.
func (q BookQuote) EventKey() string {
	return fmt.Sprintf("%s@%s", q.AwayTeam, q.HomeTeam)
}

// EventName is the human-readable fixture label.
func (q BookQuote) EventName() string {
	return fmt.Sprintf("%s @ %s", q.AwayTeam, q.HomeTeam)
}

// Priced reports whether the outcome carries a usable probability.
func (q BookQuote) Priced() bool {
	return q.ImpliedProb > 0 && q.ImpliedProb < 1
}

// OutcomeKey distinguishes outcomes within a market group, folding the point
// line in so "Over 215.5" and "Over 220.5" stay distinct.
func (q BookQuote) OutcomeKey() string {
	if q.Point != nil {
		return fmt.Sprintf("%s|%g", q.OutcomeName, *q.Point)
	}
	return q.OutcomeName
}
