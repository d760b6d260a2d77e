// Package kalshi fetches sports markets from the Kalshi trade API, series by
// series, and normalizes them for the scan engine.
package kalshi

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

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/normalize"
)

// DefaultBaseURL is the public trade API root.
const DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// The basic API tier allows 20 reads/sec; five concurrent series fetches
// stay comfortably under that.
const maxConcurrentFetches = 5

// series enumerates the sports series scanned, with the sport and market
// type each ticker implies. Kalshi encodes the market flavor in the series
// ticker itself, so no text inference is needed.
var series = []struct {
	ticker     string
	sport      domain.SportCategory
	marketType domain.MarketType
}{
	{"KXNBAGAME", domain.SportNBA, domain.MarketMoneyline},
	{"KXNBASPREAD", domain.SportNBA, domain.MarketWinningMargin},
	{"KXNBATOTAL", domain.SportNBA, domain.MarketTotals},
	{"KXNBAPTS", domain.SportNBA, domain.MarketPlayerProps},
	{"KXNBA1HTOTAL", domain.SportNBA, domain.MarketFirstHalf},
	{"KXNFLGAME", domain.SportNFL, domain.MarketMoneyline},
	{"KXNFLSPREAD", domain.SportNFL, domain.MarketWinningMargin},
	{"KXNFLTOTAL", domain.SportNFL, domain.MarketTotals},
	{"KXMLBGAME", domain.SportMLB, domain.MarketMoneyline},
	{"KXMLBSPREAD", domain.SportMLB, domain.MarketWinningMargin},
	{"KXNHLGAME", domain.SportNHL, domain.MarketMoneyline},
	{"KXNHLSPREAD", domain.SportNHL, domain.MarketWinningMargin},
	{"KXUFCFIGHT", domain.SportMMA, domain.MarketMoneyline},
	{"KXMMAGAME", domain.SportMMA, domain.MarketMoneyline},
	{"KXEPLGAME", domain.SportSoccer, domain.MarketMoneyline},
	{"KXEPLTOTAL", domain.SportSoccer, domain.MarketTotals},
	{"KXMLSGAME", domain.SportSoccer, domain.MarketMoneyline},
}

// Client is the REST client for the Kalshi trade API. Market data endpoints
// are public, so no request signing is needed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	norm       *normalize.Normalizer
	logger     *slog.Logger
}

// NewClient creates a Kalshi API client.
func NewClient(baseURL string, norm *normalize.Normalizer, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		norm:       norm,
		logger:     logger.With(slog.String("component", "kalshi")),
	}
}

// FetchSportsMarkets fetches the open markets of every sports series with
// bounded concurrency. A failed series is logged and skipped.
func (c *Client) FetchSportsMarkets(ctx context.Context) ([]domain.BinaryMarket, error) {
	var (
		mu  sync.Mutex
		out []domain.BinaryMarket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, sr := range series {
		g.Go(func() error {
			markets, err := c.fetchSeries(gctx, sr.ticker)
			if err != nil {
				c.logger.WarnContext(gctx, "series fetch failed",
					slog.String("series", sr.ticker),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			for i := range markets {
				out = append(out, c.toBinaryMarket(&markets[i], sr.sport, sr.marketType))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("kalshi: fetch sports markets: %w", err)
	}

	c.logger.InfoContext(ctx, "fetched markets", slog.Int("count", len(out)))
	return out, nil
}

func (c *Client) fetchSeries(ctx context.Context, ticker string) ([]APIMarket, error) {
	params := url.Values{
		"series_ticker": {ticker},
		"status":        {"open"},
		"limit":         {"200"},
	}

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp APIMarketsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	return resp.Markets, nil
}

// toBinaryMarket normalizes a Kalshi market. The no_sub_title names what the
// YES contract refers to (usually a team), which the side aligner relies on.
func (c *Client) toBinaryMarket(m *APIMarket, sport domain.SportCategory, mtype domain.MarketType) domain.BinaryMarket {
	yes, no := m.probabilities()

	desc := m.NoSubTitle
	if desc == "" {
		desc = m.Subtitle
	}
	if desc == "" {
		desc = m.Title
	}

	bm := domain.BinaryMarket{
		Source:      domain.SourceKalshi,
		ID:          m.Ticker,
		Question:    m.Title,
		Description: desc,
		Outcomes:    [2]string{"Yes", "No"},
		Prices:      [2]float64{yes, no},
		Teams:       c.norm.ExtractTeams(m.Title),
		Sport:       sport,
		Subtype:     mtype,
		PointLine:   m.FloorStrike,
		YesLabel:    m.NoSubTitle,
		TokenSet:    c.norm.TokenSet(m.Title + " " + m.NoSubTitle),
		EndDate:     m.endDate(),
		Volume:      m.Volume,
		Liquidity:   m.OpenInterest,
	}
	if m.Ticker != "" {
		bm.URL = "https://kalshi.com/markets/" + strings.ToLower(m.Ticker)
	}
	return bm
}

// doGet sends an unauthenticated GET request to the trade API.
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

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, body)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
