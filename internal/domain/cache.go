package domain

import (
	"context"
	"time"
)

// SnapshotCache stores fetched per-source quote snapshots for a short TTL so
// back-to-back scans reuse upstream responses instead of refetching.
type SnapshotCache interface {
	GetBinaryMarkets(ctx context.Context, source Source) ([]BinaryMarket, error)
	SetBinaryMarkets(ctx context.Context, source Source, markets []BinaryMarket) error
	GetBookQuotes(ctx context.Context) ([]BookQuote, error)
	SetBookQuotes(ctx context.Context, quotes []BookQuote) error
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
