// Package engine runs the full opportunity scan: it matches prediction
// markets against sportsbook odds and each other, computes fee-adjusted
// arbitrage and +EV edges, and ranks the deduplicated results.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/fairodds"
	"github.com/oddsync/arbscan/internal/match"
	"github.com/oddsync/arbscan/internal/normalize"
)

// Snapshot is one scan's worth of fetched quotes plus per-source fetch
// outcomes. The engine treats it as immutable and performs no I/O.
type Snapshot struct {
	Polymarket []domain.BinaryMarket
	Kalshi     []domain.BinaryMarket
	Books      []domain.BookQuote

	Sources map[domain.Source]domain.SourceStatus
	Errors  []string
}

// Params tunes a single scan.
type Params struct {
	MinNetPct float64  // minimum net arb percentage to report
	MinEVPct  float64  // minimum EV percentage to report
	Bankroll  float64  // reference bankroll for stake splits
	Sports    []string // display-name sport filter; empty = all
}

// DefaultParams reports everything: arbs regardless of net edge, +EV bets
// from 2% up, stakes for a $100 bankroll.
func DefaultParams() Params {
	return Params{MinNetPct: -999, MinEVPct: 2.0, Bankroll: 100}
}

// Result is the outcome of one scan.
type Result struct {
	Opportunities []domain.Opportunity `json:"opportunities"`
	Meta          domain.ScanMeta      `json:"meta"`
}

// Scanner is the matching-and-opportunity engine. Safe for concurrent use.
type Scanner struct {
	norm   *normalize.Normalizer
	fees   domain.FeeSchedule
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Scanner with the given fee schedule.
func New(norm *normalize.Normalizer, fees domain.FeeSchedule, logger *slog.Logger) *Scanner {
	return &Scanner{
		norm:   norm,
		fees:   fees,
		logger: logger.With(slog.String("component", "engine")),
		now:    time.Now,
	}
}

// Scan runs every detection pass over the snapshot and returns the ranked,
// deduplicated opportunities with scan metadata. Passes are independent pure
// computations and run concurrently.
func (s *Scanner) Scan(ctx context.Context, snap Snapshot, params Params) Result {
	start := s.now()

	var (
		bookIndex = match.NewIndex(snap.Books)
		fairIndex fairodds.Index
	)
	if len(snap.Books) > 0 {
		fairIndex = fairodds.Build(snap.Books)
	}

	passes := make([][]domain.Opportunity, 6)
	g, _ := errgroup.WithContext(ctx)

	if len(snap.Books) > 0 {
		if len(snap.Polymarket) > 0 {
			g.Go(func() error {
				passes[0] = s.findBookArbs(snap.Polymarket, bookIndex, params)
				return nil
			})
		}
		if len(snap.Kalshi) > 0 {
			g.Go(func() error {
				passes[1] = s.findBookArbs(snap.Kalshi, bookIndex, params)
				return nil
			})
		}
	}
	if len(snap.Polymarket) > 0 && len(snap.Kalshi) > 0 {
		g.Go(func() error {
			passes[2] = s.findCrossPredictionArbs(snap.Polymarket, snap.Kalshi, params)
			return nil
		})
	}
	if len(fairIndex) > 0 {
		if len(snap.Polymarket) > 0 {
			g.Go(func() error {
				passes[3] = s.findBookEV(snap.Polymarket, bookIndex, fairIndex, params)
				return nil
			})
		}
		if len(snap.Kalshi) > 0 {
			g.Go(func() error {
				passes[4] = s.findBookEV(snap.Kalshi, bookIndex, fairIndex, params)
				return nil
			})
		}
		g.Go(func() error {
			passes[5] = s.findCrossBook(snap.Books, fairIndex, params)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // passes never return errors

	var all []domain.Opportunity
	for _, pass := range passes {
		all = append(all, pass...)
	}

	all = filterSports(all, params.Sports)
	all = dedupeByID(all)
	rank(all)

	meta := domain.ScanMeta{
		ScanTime:        s.now().Sub(start).Seconds(),
		Timestamp:       s.now().UTC(),
		TotalCount:      len(all),
		Sources:         snap.Sources,
		Errors:          snap.Errors,
		PolyCount:       len(snap.Polymarket),
		KalshiCount:     len(snap.Kalshi),
		SportsbookCount: len(snap.Books),
	}
	for _, o := range all {
		if o.Type == domain.OpportunityArb {
			meta.ArbCount++
		} else {
			meta.EVCount++
		}
	}

	s.logger.InfoContext(ctx, "scan complete",
		slog.Int("opportunities", len(all)),
		slog.Int("arbs", meta.ArbCount),
		slog.Int("evs", meta.EVCount),
		slog.Float64("seconds", meta.ScanTime),
	)

	return Result{Opportunities: all, Meta: meta}
}

// filterSports keeps only opportunities whose display sport is in the
// filter. An empty filter keeps everything.
func filterSports(opps []domain.Opportunity, sports []string) []domain.Opportunity {
	if len(sports) == 0 {
		return opps
	}
	allowed := make(map[string]bool, len(sports))
	for _, sp := range sports {
		if sp = strings.TrimSpace(sp); sp != "" {
			allowed[strings.ToUpper(sp)] = true
		}
	}
	if len(allowed) == 0 {
		return opps
	}
	out := opps[:0]
	for _, o := range opps {
		if allowed[strings.ToUpper(o.Sport)] {
			out = append(out, o)
		}
	}
	return out
}

// dedupeByID collapses opportunities that hash to the same ID across passes,
// keeping whichever carries the larger edge.
func dedupeByID(opps []domain.Opportunity) []domain.Opportunity {
	seen := make(map[string]int, len(opps))
	var out []domain.Opportunity
	for _, o := range opps {
		if i, ok := seen[o.ID]; ok {
			if o.Edge() > out[i].Edge() {
				out[i] = o
			}
			continue
		}
		seen[o.ID] = len(out)
		out = append(out, o)
	}
	return out
}

// rank sorts arbitrage opportunities ahead of +EV ones, each group in
// descending edge order.
func rank(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		ai, aj := opps[i].Type == domain.OpportunityArb, opps[j].Type == domain.OpportunityArb
		if ai != aj {
			return ai
		}
		return opps[i].Edge() > opps[j].Edge()
	})
}
