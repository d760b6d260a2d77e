package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// OpportunityType distinguishes guaranteed arbitrage from +EV bets.
type OpportunityType string

const (
	OpportunityArb OpportunityType = "arb"
	OpportunityEV  OpportunityType = "ev"
)

// ResolutionRisk grades how likely an opportunity is to survive contact with
// reality (stale quotes, mismatched settlement criteria).
type ResolutionRisk string

const (
	RiskLow    ResolutionRisk = "low"
	RiskMedium ResolutionRisk = "medium"
	RiskHigh   ResolutionRisk = "high"
)

// Leg is one side of an opportunity on one platform.
type Leg struct {
	Name         string  `json:"name"`
	Side         string  `json:"side"`
	Price        float64 `json:"price"`
	ImpliedProb  float64 `json:"implied_prob"`
	AmericanOdds int     `json:"american_odds"`
	FeePct       float64 `json:"fee_pct"`
	URL          string  `json:"url,omitempty"`
	MarketID     string  `json:"market_id,omitempty"`
}

// Stakes is the equal-payout stake split for a reference bankroll.
type Stakes struct {
	StakeA           float64 `json:"stake_a"`
	StakeB           float64 `json:"stake_b"`
	TotalStaked      float64 `json:"total_staked"`
	Payout           float64 `json:"payout"`
	GuaranteedProfit float64 `json:"guaranteed_profit"`
}

// Opportunity is a single detected arb or +EV bet. Opportunities are
// recomputed on every scan and never treated as a system of record.
type Opportunity struct {
	ID           string          `json:"id"`
	Type         OpportunityType `json:"type"`
	Sport        string          `json:"sport"`
	Event        string          `json:"event"`
	EventDetail  string          `json:"event_detail"`
	CommenceTime *time.Time      `json:"commence_time,omitempty"`
	TimeDisplay  string          `json:"time_display"`
	IsLive       bool            `json:"is_live"`

	PlatformA Leg `json:"platform_a"`
	PlatformB Leg `json:"platform_b"`

	MarketType    MarketType `json:"market_type"`
	GrossArbPct   float64    `json:"gross_arb_pct"`
	NetArbPct     float64    `json:"net_arb_pct"`
	EVPct         float64    `json:"ev_pct"`
	ConsensusProb float64    `json:"consensus_prob"`
	Stakes        *Stakes    `json:"stakes,omitempty"`

	Confidence float64        `json:"match_confidence"`
	Risk       ResolutionRisk `json:"resolution_risk"`
	RiskNote   string         `json:"risk_note"`
	IsProp     bool           `json:"is_prop"`
	Liquidity  float64        `json:"liquidity"`
	Volume     float64        `json:"volume"`
}

// Edge is the ranking score: net arb percentage plus EV percentage. Arb
// opportunities carry their edge in NetArbPct, +EV ones in EVPct.
func (o Opportunity) Edge() float64 {
	return o.NetArbPct + o.EVPct
}

// OpportunityID derives a short deterministic identifier from the key
// material of an opportunity, so the same pairing hashes to the same ID
// across scans.
func OpportunityID(material string) string {
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])[:12]
}
