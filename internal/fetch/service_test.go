package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/oddsync/arbscan/internal/domain"
)

type fakeBinaryFetcher struct {
	markets []domain.BinaryMarket
	err     error
}

func (f *fakeBinaryFetcher) FetchSportsMarkets(ctx context.Context) ([]domain.BinaryMarket, error) {
	return f.markets, f.err
}

type fakeBookFetcher struct {
	quotes []domain.BookQuote
	err    error
}

func (f *fakeBookFetcher) FetchOdds(ctx context.Context, apiKey string, sports []string) ([]domain.BookQuote, error) {
	return f.quotes, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSnapshotAllSourcesHealthy(t *testing.T) {
	svc := New(
		&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "p1"}}},
		&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "k1"}, {ID: "k2"}}},
		&fakeBookFetcher{quotes: []domain.BookQuote{{Bookmaker: "pinnacle"}}},
		nil, nil, testLogger(),
	)

	snap := svc.Snapshot(context.Background(), "scan-1", "key", nil)

	if len(snap.Polymarket) != 1 || len(snap.Kalshi) != 2 || len(snap.Books) != 1 {
		t.Errorf("counts = (%d, %d, %d), want (1, 2, 1)",
			len(snap.Polymarket), len(snap.Kalshi), len(snap.Books))
	}
	for src, want := range map[domain.Source]domain.SourceStatus{
		domain.SourcePolymarket: domain.StatusOK,
		domain.SourceKalshi:     domain.StatusOK,
		domain.SourceSportsbook: domain.StatusOK,
	} {
		if got := snap.Sources[src]; got != want {
			t.Errorf("Sources[%s] = %q, want %q", src, got, want)
		}
	}
	if len(snap.Errors) != 0 {
		t.Errorf("Errors = %v, want none", snap.Errors)
	}
}

func TestSnapshotSourceFailureDegrades(t *testing.T) {
	svc := New(
		&fakeBinaryFetcher{err: errors.New("gamma unreachable")},
		&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "k1"}}},
		&fakeBookFetcher{quotes: []domain.BookQuote{{Bookmaker: "pinnacle"}}},
		nil, nil, testLogger(),
	)

	snap := svc.Snapshot(context.Background(), "scan-1", "key", nil)

	if snap.Sources[domain.SourcePolymarket] != domain.StatusError {
		t.Errorf("polymarket status = %q, want error", snap.Sources[domain.SourcePolymarket])
	}
	if snap.Sources[domain.SourceKalshi] != domain.StatusOK {
		t.Errorf("kalshi status = %q, want ok", snap.Sources[domain.SourceKalshi])
	}
	if len(snap.Errors) != 1 {
		t.Errorf("Errors = %v, want one entry", snap.Errors)
	}
}

func TestSnapshotEmptySource(t *testing.T) {
	svc := New(
		&fakeBinaryFetcher{},
		&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "k1"}}},
		&fakeBookFetcher{quotes: []domain.BookQuote{{Bookmaker: "pinnacle"}}},
		nil, nil, testLogger(),
	)

	snap := svc.Snapshot(context.Background(), "scan-1", "key", nil)
	if snap.Sources[domain.SourcePolymarket] != domain.StatusEmpty {
		t.Errorf("polymarket status = %q, want empty", snap.Sources[domain.SourcePolymarket])
	}
}

func TestSnapshotNoAPIKey(t *testing.T) {
	books := &fakeBookFetcher{err: errors.New("should not be called")}
	svc := New(
		&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "p1"}}},
		&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "k1"}}},
		books,
		nil, nil, testLogger(),
	)

	snap := svc.Snapshot(context.Background(), "scan-1", "", nil)

	if snap.Sources[domain.SourceSportsbook] != domain.StatusNoKey {
		t.Errorf("sportsbook status = %q, want no_key", snap.Sources[domain.SourceSportsbook])
	}
	if len(snap.Errors) != 0 {
		t.Errorf("a missing key is not an error, got %v", snap.Errors)
	}
	if len(snap.Books) != 0 {
		t.Errorf("Books = %v, want none without a key", snap.Books)
	}
}

func TestSnapshotBookErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.SourceStatus
	}{
		{"invalid key", domain.ErrInvalidKey, domain.StatusInvalidKey},
		{"quota exceeded", domain.ErrQuotaExceeded, domain.StatusQuotaExceeded},
		{"wrapped invalid key", errors.Join(errors.New("upstream"), domain.ErrInvalidKey), domain.StatusInvalidKey},
		{"generic failure", errors.New("timeout"), domain.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(
				&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "p1"}}},
				&fakeBinaryFetcher{markets: []domain.BinaryMarket{{ID: "k1"}}},
				&fakeBookFetcher{err: tt.err},
				nil, nil, testLogger(),
			)

			snap := svc.Snapshot(context.Background(), "scan-1", "key", nil)
			if got := snap.Sources[domain.SourceSportsbook]; got != tt.want {
				t.Errorf("sportsbook status = %q, want %q", got, tt.want)
			}
			if len(snap.Errors) != 1 {
				t.Errorf("Errors = %v, want one entry", snap.Errors)
			}
		})
	}
}
