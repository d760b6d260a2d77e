package oddsapi

import "time"

// APIEvent is a fixture as returned by The Odds API odds endpoint, carrying
// every bookmaker's markets for that fixture.
type APIEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's set of markets for a fixture.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is a single market (h2h, spreads, totals, player props) at one book.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one priced side of a market. Description carries the player
// name on prop markets; Point the line on spreads/totals/props.
type Outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point"`
}

// APISport is an entry from the sports list endpoint, used only to validate
// an API key.
type APISport struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

func (e *APIEvent) commence() time.Time {
	if e.CommenceTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, e.CommenceTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
