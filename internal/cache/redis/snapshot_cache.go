package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL keeps fetched quotes fresh across back-to-back scans
// without hammering the upstream APIs.
const DefaultSnapshotTTL = 60 * time.Second

// SnapshotCache implements domain.SnapshotCache using Redis hashes with
// JSON-serialized quote lists.
//
// Key schema:
//
//	snapshot:markets:{source} - hash with field "data" containing JSON
//	snapshot:books            - hash with field "data" containing JSON
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client. A
// non-positive ttl falls back to DefaultSnapshotTTL.
func NewSnapshotCache(c *Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{rdb: c.Underlying(), ttl: ttl}
}

func marketsKey(source domain.Source) string { return "snapshot:markets:" + string(source) }

const booksKey = "snapshot:books"

// SetBinaryMarkets stores one venue's markets with the cache TTL.
func (sc *SnapshotCache) SetBinaryMarkets(ctx context.Context, source domain.Source, markets []domain.BinaryMarket) error {
	data, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("redis: marshal %s markets: %w", source, err)
	}

	key := marketsKey(source)
	pipe := sc.rdb.TxPipeline()
	pipe.HSet(ctx, key, "data", data)
	pipe.Expire(ctx, key, sc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set %s markets: %w", source, err)
	}
	return nil
}

// GetBinaryMarkets retrieves one venue's cached markets.
// It returns domain.ErrNotFound when the snapshot has expired.
func (sc *SnapshotCache) GetBinaryMarkets(ctx context.Context, source domain.Source) ([]domain.BinaryMarket, error) {
	data, err := sc.rdb.HGet(ctx, marketsKey(source), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get %s markets: %w", source, err)
	}

	var markets []domain.BinaryMarket
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal %s markets: %w", source, err)
	}
	return markets, nil
}

// SetBookQuotes stores the sportsbook quote snapshot with the cache TTL.
func (sc *SnapshotCache) SetBookQuotes(ctx context.Context, quotes []domain.BookQuote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("redis: marshal book quotes: %w", err)
	}

	pipe := sc.rdb.TxPipeline()
	pipe.HSet(ctx, booksKey, "data", data)
	pipe.Expire(ctx, booksKey, sc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set book quotes: %w", err)
	}
	return nil
}

// GetBookQuotes retrieves the cached sportsbook quotes.
// It returns domain.ErrNotFound when the snapshot has expired.
func (sc *SnapshotCache) GetBookQuotes(ctx context.Context) ([]domain.BookQuote, error) {
	data, err := sc.rdb.HGet(ctx, booksKey, "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get book quotes: %w", err)
	}

	var quotes []domain.BookQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("redis: unmarshal book quotes: %w", err)
	}
	return quotes, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
