package kalshi

import "time"

// APIMarketsResponse is the envelope around the markets list endpoint.
type APIMarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// APIMarket is a market as returned by the Kalshi trade API.
type APIMarket struct {
	Ticker         string   `json:"ticker"`
	EventTicker    string   `json:"event_ticker"`
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle"`
	NoSubTitle     string   `json:"no_sub_title"`
	Status         string   `json:"status"`
	YesBid         float64  `json:"yes_bid"`
	YesAsk         float64  `json:"yes_ask"`
	NoBid          float64  `json:"no_bid"`
	NoAsk          float64  `json:"no_ask"`
	LastPrice      float64  `json:"last_price"`
	Volume         float64  `json:"volume"`
	OpenInterest   float64  `json:"open_interest"`
	FloorStrike    *float64 `json:"floor_strike"`
	ExpirationTime string   `json:"expiration_time"`
	CloseTime      string   `json:"close_time"`
}

// probabilities derives implied probabilities for both sides. Bids are
// preferred over last trade, asks cover markets with no bid at all, and a
// missing side falls back to the complement of the other. Kalshi quotes in
// cents, so values above 1 are scaled down.
func (m *APIMarket) probabilities() (yes, no float64) {
	yes = m.YesBid
	if yes == 0 {
		yes = m.LastPrice
	}
	no = m.NoBid
	if yes == 0 && no == 0 {
		yes = m.YesAsk
		no = m.NoAsk
	}
	if yes > 1 {
		yes /= 100
	}
	if no > 1 {
		no /= 100
	}
	if yes > 0 && no == 0 {
		no = 1 - yes
	}
	if no > 0 && yes == 0 {
		yes = 1 - no
	}
	return yes, no
}

func (m *APIMarket) endDate() time.Time {
	for _, raw := range []string{m.ExpirationTime, m.CloseTime} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
