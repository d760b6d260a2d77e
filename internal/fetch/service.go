// Package fetch gathers quotes from every source concurrently and assembles
// the snapshot a scan runs over. Source failures degrade to per-source
// statuses rather than aborting the scan.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/engine"
)

// BinaryMarketFetcher fetches a prediction-market venue's sports markets.
type BinaryMarketFetcher interface {
	FetchSportsMarkets(ctx context.Context) ([]domain.BinaryMarket, error)
}

// BookOddsFetcher fetches sportsbook quotes with a user-supplied API key.
type BookOddsFetcher interface {
	FetchOdds(ctx context.Context, apiKey string, sports []string) ([]domain.BookQuote, error)
}

const sourceTimeout = 25 * time.Second

// Service fans out to all three sources. Cache and archiver are optional;
// nil disables them.
type Service struct {
	polymarket BinaryMarketFetcher
	kalshi     BinaryMarketFetcher
	books      BookOddsFetcher
	cache      domain.SnapshotCache
	archiver   domain.SnapshotArchiver
	logger     *slog.Logger
}

// New creates the fetch service.
func New(polymarket, kalshi BinaryMarketFetcher, books BookOddsFetcher,
	cache domain.SnapshotCache, archiver domain.SnapshotArchiver, logger *slog.Logger) *Service {
	return &Service{
		polymarket: polymarket,
		kalshi:     kalshi,
		books:      books,
		cache:      cache,
		archiver:   archiver,
		logger:     logger.With(slog.String("component", "fetch")),
	}
}

// Snapshot fetches all sources in parallel with per-source timeouts and
// returns the assembled snapshot. Fresh results are served from the cache
// when one is configured; raw fetches are archived under scanID.
func (s *Service) Snapshot(ctx context.Context, scanID, oddsAPIKey string, sports []string) engine.Snapshot {
	snap := engine.Snapshot{
		Sources: make(map[domain.Source]domain.SourceStatus, 3),
	}

	var (
		mu   sync.Mutex
		errs []string
	)
	record := func(source domain.Source, status domain.SourceStatus, err error) {
		mu.Lock()
		defer mu.Unlock()
		snap.Sources[source] = status
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", source, err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		markets, status, err := s.fetchBinary(gctx, scanID, domain.SourcePolymarket, s.polymarket)
		snap.Polymarket = markets
		record(domain.SourcePolymarket, status, err)
		return nil
	})
	g.Go(func() error {
		markets, status, err := s.fetchBinary(gctx, scanID, domain.SourceKalshi, s.kalshi)
		snap.Kalshi = markets
		record(domain.SourceKalshi, status, err)
		return nil
	})
	g.Go(func() error {
		quotes, status, err := s.fetchBooks(gctx, scanID, oddsAPIKey, sports)
		snap.Books = quotes
		record(domain.SourceSportsbook, status, err)
		return nil
	})
	g.Wait() //nolint:errcheck // source failures are folded into statuses

	snap.Errors = errs
	s.logger.InfoContext(ctx, "snapshot assembled",
		slog.Int("polymarket", len(snap.Polymarket)),
		slog.Int("kalshi", len(snap.Kalshi)),
		slog.Int("sportsbook", len(snap.Books)),
		slog.Int("errors", len(errs)),
	)
	return snap
}

func (s *Service) fetchBinary(ctx context.Context, scanID string, source domain.Source,
	fetcher BinaryMarketFetcher) ([]domain.BinaryMarket, domain.SourceStatus, error) {

	if s.cache != nil {
		if markets, err := s.cache.GetBinaryMarkets(ctx, source); err == nil {
			return markets, statusFor(len(markets)), nil
		}
	}

	fctx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	markets, err := fetcher.FetchSportsMarkets(fctx)
	if err != nil {
		return nil, domain.StatusError, err
	}

	if s.cache != nil {
		if err := s.cache.SetBinaryMarkets(ctx, source, markets); err != nil {
			s.logger.WarnContext(ctx, "cache write failed",
				slog.String("source", string(source)), slog.String("error", err.Error()))
		}
	}
	s.archive(ctx, scanID, source, markets)
	return markets, statusFor(len(markets)), nil
}

func (s *Service) fetchBooks(ctx context.Context, scanID, apiKey string,
	sports []string) ([]domain.BookQuote, domain.SourceStatus, error) {

	if apiKey == "" {
		return nil, domain.StatusNoKey, nil
	}

	if s.cache != nil {
		if quotes, err := s.cache.GetBookQuotes(ctx); err == nil {
			return quotes, statusFor(len(quotes)), nil
		}
	}

	fctx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	quotes, err := s.books.FetchOdds(fctx, apiKey, sports)
	if err != nil {
		return nil, bookStatus(err), err
	}

	if s.cache != nil {
		if err := s.cache.SetBookQuotes(ctx, quotes); err != nil {
			s.logger.WarnContext(ctx, "cache write failed",
				slog.String("source", "sportsbook"), slog.String("error", err.Error()))
		}
	}
	s.archive(ctx, scanID, domain.SourceSportsbook, quotes)
	return quotes, statusFor(len(quotes)), nil
}

func (s *Service) archive(ctx context.Context, scanID string, source domain.Source, records any) {
	if s.archiver == nil || scanID == "" {
		return
	}
	if err := s.archiver.ArchiveSnapshot(ctx, scanID, source, records); err != nil {
		s.logger.WarnContext(ctx, "archive failed",
			slog.String("source", string(source)), slog.String("error", err.Error()))
	}
}

func statusFor(count int) domain.SourceStatus {
	if count == 0 {
		return domain.StatusEmpty
	}
	return domain.StatusOK
}

// bookStatus classifies an Odds API failure.
func bookStatus(err error) domain.SourceStatus {
	switch {
	case errors.Is(err, domain.ErrNoAPIKey):
		return domain.StatusNoKey
	case errors.Is(err, domain.ErrInvalidKey):
		return domain.StatusInvalidKey
	case errors.Is(err, domain.ErrQuotaExceeded):
		return domain.StatusQuotaExceeded
	default:
		return domain.StatusError
	}
}
