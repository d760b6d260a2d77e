// Package oddsapi fetches sportsbook odds from The Odds API and flattens
// them into per-outcome quotes for the scan engine.
package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddsync/arbscan/internal/classify"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
	"github.com/oddsync/arbscan/internal/oddsmath"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.the-odds-api.com"

// Sports fetched on every scan. No bookmakers filter is applied: the API
// returns all available books at no extra credit cost, and more books make a
// better devigged consensus.
var defaultSports = []string{
	"basketball_nba",
	"americanfootball_nfl",
	"baseball_mlb",
	"icehockey_nhl",
	"soccer_usa_mls",
	"soccer_epl",
	"mma_mixed_martial_arts",
}

const (
	gameMarkets = "h2h,spreads,totals"
	propMarkets = "player_points,player_rebounds,player_assists,player_threes"
)

// Client is the REST client for The Odds API. The key is supplied per call
// because it is user-configurable at runtime.
type Client struct {
	baseURL    string
	httpClient *http.Client
	norm       *normalize.Normalizer
	logger     *slog.Logger
}

// NewClient creates an Odds API client.
func NewClient(baseURL string, norm *normalize.Normalizer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		norm:       norm,
		logger:     logger.With(slog.String("component", "oddsapi")),
	}
}

// FetchOdds fetches game odds for every configured sport plus NBA player
// props, all in parallel. Individual sport failures are tolerated, but when
// every request fails with a key or quota error that error is returned so
// the caller can surface it to the user.
func (c *Client) FetchOdds(ctx context.Context, apiKey string, sports []string) ([]domain.BookQuote, error) {
	if apiKey == "" {
		return nil, domain.ErrNoAPIKey
	}
	if len(sports) == 0 {
		sports = defaultSports
	}

	type task struct {
		sport  string
		isProp bool
	}
	tasks := make([]task, 0, len(sports)+1)
	for _, sport := range sports {
		tasks = append(tasks, task{sport: sport})
	}
	tasks = append(tasks, task{sport: "basketball_nba", isProp: true})

	var (
		mu       sync.Mutex
		quotes   []domain.BookQuote
		apiErrs  []error
		anyEvent bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error {
			events, err := c.fetchSport(gctx, apiKey, t.sport, t.isProp)
			if err != nil {
				c.logger.WarnContext(gctx, "sport fetch failed",
					slog.String("sport", t.sport),
					slog.Bool("props", t.isProp),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				apiErrs = append(apiErrs, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			if len(events) > 0 {
				anyEvent = true
			}
			for i := range events {
				quotes = append(quotes, c.flatten(&events[i], t.sport, t.isProp)...)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("oddsapi: fetch odds: %w", err)
	}

	if !anyEvent && len(apiErrs) > 0 {
		for _, sentinel := range []error{domain.ErrQuotaExceeded, domain.ErrInvalidKey} {
			for _, err := range apiErrs {
				if errors.Is(err, sentinel) {
					return nil, err
				}
			}
		}
		return nil, fmt.Errorf("oddsapi: all sports failed: %w", apiErrs[0])
	}

	c.logger.InfoContext(ctx, "fetched odds", slog.Int("quotes", len(quotes)))
	return quotes, nil
}

// ValidateKey checks an API key against the sports list endpoint, the
// cheapest call the API offers.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return domain.ErrNoAPIKey
	}
	body, err := c.doGet(ctx, "/v4/sports?"+url.Values{"apiKey": {apiKey}}.Encode())
	if err != nil {
		return err
	}
	var sports []APISport
	if err := json.Unmarshal(body, &sports); err != nil {
		return fmt.Errorf("oddsapi: decode sports: %w", err)
	}
	return nil
}

func (c *Client) fetchSport(ctx context.Context, apiKey, sport string, isProp bool) ([]APIEvent, error) {
	markets := gameMarkets
	if isProp {
		markets = propMarkets
	}
	params := url.Values{
		"apiKey":     {apiKey},
		"regions":    {"us"},
		"markets":    {markets},
		"oddsFormat": {"american"},
	}

	body, err := c.doGet(ctx, "/v4/sports/"+url.PathEscape(sport)+"/odds?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// flatten expands one fixture into per-outcome quotes, one row per
// (bookmaker, market, outcome), converting odds at parse time.
func (c *Client) flatten(e *APIEvent, sportKey string, isProp bool) []domain.BookQuote {
	commence := e.commence()
	teams := c.norm.ExtractTeams(e.HomeTeam + " " + e.AwayTeam)
	sport := classify.SportFromKey(sportKey)

	var out []domain.BookQuote
	for _, bk := range e.Bookmakers {
		for _, market := range bk.Markets {
			for _, o := range market.Outcomes {
				if o.Price == 0 {
					continue
				}
				out = append(out, domain.BookQuote{
					Bookmaker:      bk.Key,
					BookmakerTitle: bk.Title,
					SportKey:       sportKey,
					Sport:          sport,
					HomeTeam:       e.HomeTeam,
					AwayTeam:       e.AwayTeam,
					CommenceTime:   commence,
					MarketType:     domain.MarketType(market.Key),
					OutcomeName:    o.Name,
					Description:    o.Description,
					Point:          o.Point,
					AmericanOdds:   o.Price,
					DecimalOdds:    oddsmath.AmericanToDecimal(o.Price),
					ImpliedProb:    oddsmath.AmericanToImplied(o.Price),
					IsProp:         isProp,
					Teams:          teams,
					TokenSet:       c.norm.TokenSet(e.AwayTeam + " " + e.HomeTeam + " " + o.Name),
				})
			}
		}
	}
	return out
}

// doGet sends a GET request, mapping key and quota failures to their domain
// sentinels.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidKey, body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, body)
	default:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
}
