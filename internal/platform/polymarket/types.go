package polymarket

import (
	"encoding/json"
	"strconv"
	"time"
)

// flexFloat unmarshals from a JSON number or a numeric string; the Gamma API
// sends volume and liquidity as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Tolerate junk; an unparsable figure is not worth dropping the market.
		*f = 0
		return nil
	}
	*f = flexFloat(n)
	return nil
}

// stringList unmarshals either a JSON array of strings or a JSON-encoded
// string containing such an array; Gamma encodes outcomes both ways.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*l = direct
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	var nested []string
	if err := json.Unmarshal([]byte(encoded), &nested); err != nil {
		*l = nil
		return nil
	}
	*l = nested
	return nil
}

func (l stringList) values() []string { return l }

// floats parses each element as a float, substituting 0 for junk values.
func (l stringList) floats() []float64 {
	out := make([]float64, len(l))
	for i, s := range l {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			v = 0
		}
		out[i] = v
	}
	return out
}

// APIMarket is a market as returned by the Gamma API.
type APIMarket struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"conditionId"`
	ConditionIDV2 string     `json:"condition_id"`
	Question      string     `json:"question"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Slug          string     `json:"slug"`
	Outcomes      stringList `json:"outcomes"`
	OutcomePrices stringList `json:"outcomePrices"`
	EndDate       string     `json:"endDate"`
	EndDateISO    string     `json:"end_date_iso"`
	Volume        flexFloat  `json:"volume"`
	Liquidity     flexFloat  `json:"liquidity"`
}

// marketID prefers the condition ID over the numeric row ID.
func (m *APIMarket) marketID() string {
	if m.ConditionID != "" {
		return m.ConditionID
	}
	if m.ConditionIDV2 != "" {
		return m.ConditionIDV2
	}
	return m.ID
}

func (m *APIMarket) endDate() time.Time {
	for _, raw := range []string{m.EndDate, m.EndDateISO} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
