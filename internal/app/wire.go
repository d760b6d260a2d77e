package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/oddsync/arbscan/internal/blob/s3"
	"github.com/oddsync/arbscan/internal/cache/redis"
	"github.com/oddsync/arbscan/internal/classify"
	"github.com/oddsync/arbscan/internal/config"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/engine"
	"github.com/oddsync/arbscan/internal/fetch"
	"github.com/oddsync/arbscan/internal/normalize"
	"github.com/oddsync/arbscan/internal/notify"
	"github.com/oddsync/arbscan/internal/platform/kalshi"
	"github.com/oddsync/arbscan/internal/platform/oddsapi"
	"github.com/oddsync/arbscan/internal/platform/polymarket"
	"github.com/oddsync/arbscan/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	SettingsStore domain.SettingsStore
	ScanStore     domain.ScanStore

	// Caches (nil when Redis is not configured)
	SnapshotCache domain.SnapshotCache
	RateLimiter   domain.RateLimiter

	// Blob storage (nil when no S3 bucket is configured)
	Archiver  domain.SnapshotArchiver
	Snapshots domain.SnapshotReader

	// Platform clients and services
	OddsAPI *oddsapi.Client
	Fetcher *fetch.Service
	Scanner *engine.Scanner

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL (settings and scan history) ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.SettingsStore = postgres.NewSettingsStore(pool)
	deps.ScanStore = postgres.NewScanStore(pool)

	// --- Redis (optional snapshot cache + rate limiter) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SnapshotCache = redis.NewSnapshotCache(redisClient, cfg.Scan.CacheTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- S3 blob storage (optional snapshot archive) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		archiver := s3blob.NewArchiver(s3blob.NewWriter(s3Client), s3blob.NewReader(s3Client))
		deps.Archiver = archiver
		deps.Snapshots = archiver
	}

	// --- Matching stack and platform clients ---
	norm := normalize.New()
	cls := classify.New(norm)

	polyClient := polymarket.NewClient(cfg.Polymarket.GammaHost, norm, cls, logger)
	kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL, norm, logger)
	deps.OddsAPI = oddsapi.NewClient(cfg.OddsAPI.BaseURL, norm, logger)

	deps.Fetcher = fetch.New(polyClient, kalshiClient, deps.OddsAPI,
		deps.SnapshotCache, deps.Archiver, logger)
	deps.Scanner = engine.New(norm, domain.DefaultFees(), logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
