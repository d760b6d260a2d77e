// Package polymarket fetches sports prediction markets from the Polymarket
// Gamma API and normalizes them for the scan engine.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddsync/arbscan/internal/classify"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
)

// DefaultBaseURL is the public Gamma API root.
const DefaultBaseURL = "https://gamma-api.polymarket.com"

// Tags fanned out in parallel when discovering sports markets.
var sportTags = []string{
	"sports", "nba", "nfl", "mlb", "nhl", "soccer", "football",
	"basketball", "baseball", "hockey", "mma", "ufc",
}

// League-level keywords: one hit is enough to call untagged text sports.
var strongSportKeywords = []string{
	"nba", "nfl", "mlb", "nhl", "soccer", "football", "basketball",
	"baseball", "hockey", "mma", "ufc", "tennis",
}

// Client is the REST client for the Polymarket Gamma API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	norm       *normalize.Normalizer
	classifier *classify.Classifier
	logger     *slog.Logger
}

// NewClient creates a Gamma API client.
func NewClient(baseURL string, norm *normalize.Normalizer, cls *classify.Classifier, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		norm:       norm,
		classifier: cls,
		logger:     logger.With(slog.String("component", "polymarket")),
	}
}

// FetchSportsMarkets discovers open sports markets: every sport tag is
// queried in parallel, plus one untagged sweep filtered client-side by
// league keywords and team names. Individual tag failures are logged and
// skipped; markets are deduplicated by condition ID.
func (c *Client) FetchSportsMarkets(ctx context.Context) ([]domain.BinaryMarket, error) {
	var (
		mu  sync.Mutex
		raw []APIMarket
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, tag := range sportTags {
		g.Go(func() error {
			markets, err := c.listMarkets(gctx, url.Values{
				"tag":    {tag},
				"closed": {"false"},
				"limit":  {"100"},
			})
			if err != nil {
				c.logger.WarnContext(gctx, "tag fetch failed",
					slog.String("tag", tag),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			raw = append(raw, markets...)
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		markets, err := c.listMarkets(gctx, url.Values{
			"closed": {"false"},
			"active": {"true"},
			"limit":  {"200"},
		})
		if err != nil {
			c.logger.WarnContext(gctx, "untagged sweep failed", slog.String("error", err.Error()))
			return nil
		}
		mu.Lock()
		for _, m := range markets {
			if c.looksLikeSports(m) {
				raw = append(raw, m)
			}
		}
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("polymarket: fetch sports markets: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	out := make([]domain.BinaryMarket, 0, len(raw))
	for i := range raw {
		id := raw[i].marketID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if bm, ok := c.toBinaryMarket(&raw[i]); ok {
			out = append(out, bm)
		}
	}

	c.logger.InfoContext(ctx, "fetched markets",
		slog.Int("raw", len(raw)),
		slog.Int("parsed", len(out)),
	)
	return out, nil
}

func (c *Client) listMarkets(ctx context.Context, params url.Values) ([]APIMarket, error) {
	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var markets []APIMarket
	if err := json.Unmarshal(body, &markets); err == nil {
		return markets, nil
	}
	// Some deployments wrap the list in an envelope.
	var envelope struct {
		Markets []APIMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	return envelope.Markets, nil
}

// looksLikeSports filters untagged markets by league keywords or known team
// references.
func (c *Client) looksLikeSports(m APIMarket) bool {
	text := strings.ToLower(m.Question + " " + m.Description)
	for _, kw := range strongSportKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return len(c.norm.ExtractTeams(text)) > 0
}

// toBinaryMarket parses a Gamma market into the engine's representation,
// classifying teams, sport, and market type at construction. Markets without
// two priced outcomes are dropped.
func (c *Client) toBinaryMarket(m *APIMarket) (domain.BinaryMarket, bool) {
	outcomes := m.Outcomes.values()
	prices := m.OutcomePrices.floats()
	if len(outcomes) < 2 || len(prices) < 2 {
		return domain.BinaryMarket{}, false
	}

	question := m.Question
	if question == "" {
		question = m.Title
	}

	bm := domain.BinaryMarket{
		Source:      domain.SourcePolymarket,
		ID:          m.marketID(),
		Question:    question,
		Description: m.Description,
		Outcomes:    [2]string{outcomes[0], outcomes[1]},
		Prices:      [2]float64{prices[0], prices[1]},
		Teams:       c.norm.ExtractTeams(question),
		Sport:       c.classifier.DetectSport(question),
		Subtype:     classify.InferMarketType(question),
		TokenSet:    c.norm.TokenSet(question + " " + m.Description),
		EndDate:     m.endDate(),
		Volume:      float64(m.Volume),
		Liquidity:   float64(m.Liquidity),
	}
	if m.Slug != "" {
		bm.URL = "https://polymarket.com/event/" + m.Slug
	}
	return bm, true
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "arbscan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, body)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, body)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, body)
	}
}
