package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/engine"
	"github.com/oddsync/arbscan/internal/server"
	"github.com/oddsync/arbscan/internal/server/handler"
)

// ServeMode starts the HTTP API and a periodic background scan loop. It
// blocks until the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode",
		slog.Int("port", a.cfg.Server.Port),
		slog.Duration("interval", a.cfg.Scan.Interval.Duration),
	)

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.ApiKey,
		RateLimiter: deps.RateLimiter,
	}, server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Scan:          handler.NewScanHandler(a, a.logger),
		Opportunities: handler.NewOpportunityHandler(deps.ScanStore, deps.Snapshots, a.logger),
		Settings:      handler.NewSettingsHandler(deps.SettingsStore, deps.OddsAPI, a.logger),
	}, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Server.Enabled {
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return a.scanLoop(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("app: serve mode: %w", err)
	}
	return nil
}

// ScanMode runs a single scan and writes the result as JSON to stdout.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	result, err := a.RunScan(ctx, handler.ScanOverrides{})
	if err != nil {
		return fmt.Errorf("app: scan mode: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("app: scan mode: encode result: %w", err)
	}
	return nil
}

// scanLoop runs a scan immediately and then on every interval tick.
func (a *App) scanLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Scan.Interval.Duration)
	defer ticker.Stop()

	for {
		if _, err := a.RunScan(ctx, handler.ScanOverrides{}); err != nil {
			a.logger.WarnContext(ctx, "background scan failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunScan executes one full scan: resolve parameters from config, stored
// settings, and per-request overrides; fetch every source; run the engine;
// persist the scan; and push alerts. It implements handler.ScanRunner.
func (a *App) RunScan(ctx context.Context, overrides handler.ScanOverrides) (engine.Result, error) {
	params, apiKey := a.resolveParams(ctx, overrides)

	scanID := uuid.NewString()
	startedAt := time.Now().UTC()

	snap := a.deps.Fetcher.Snapshot(ctx, scanID, apiKey, a.cfg.OddsAPI.Sports)

	// A key or quota failure means the operator has to act; surface it
	// instead of returning a partial result.
	switch snap.Sources[domain.SourceSportsbook] {
	case domain.StatusInvalidKey:
		return engine.Result{}, domain.ErrInvalidKey
	case domain.StatusQuotaExceeded:
		return engine.Result{}, domain.ErrQuotaExceeded
	}

	result := a.deps.Scanner.Scan(ctx, snap, params)

	rec := domain.ScanRecord{
		ID:            scanID,
		StartedAt:     startedAt,
		Meta:          result.Meta,
		Opportunities: result.Opportunities,
	}
	if err := a.deps.ScanStore.Insert(ctx, rec); err != nil {
		a.logger.WarnContext(ctx, "persist scan failed",
			slog.String("scan_id", scanID),
			slog.String("error", err.Error()),
		)
	}

	if err := a.deps.Notifier.AlertScanComplete(ctx, result.Meta); err != nil {
		a.logger.WarnContext(ctx, "scan alert failed", slog.String("error", err.Error()))
	}
	if err := a.deps.Notifier.AlertOpportunities(ctx, result.Opportunities, a.cfg.Notify.MinEdgePct); err != nil {
		a.logger.WarnContext(ctx, "opportunity alerts failed", slog.String("error", err.Error()))
	}

	return result, nil
}

// resolveParams layers scan parameters: config defaults, then stored
// settings, then per-request overrides.
func (a *App) resolveParams(ctx context.Context, overrides handler.ScanOverrides) (engine.Params, string) {
	params := engine.DefaultParams()
	params.MinNetPct = a.cfg.Scan.MinNetPct
	params.MinEVPct = a.cfg.Scan.MinEVPct
	params.Bankroll = a.cfg.Scan.Bankroll
	params.Sports = a.cfg.Scan.Sports
	apiKey := a.cfg.OddsAPI.ApiKey

	if settings, err := a.deps.SettingsStore.All(ctx); err == nil {
		if v, ok := settings[domain.SettingMinNetPct]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				params.MinNetPct = f
			}
		}
		if v, ok := settings[domain.SettingMinEVPct]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				params.MinEVPct = f
			}
		}
		if v, ok := settings[domain.SettingSports]; ok && v != "" {
			params.Sports = splitCSV(v)
		}
		if v, ok := settings[domain.SettingOddsAPIKey]; ok && v != "" {
			apiKey = v
		}
	} else {
		a.logger.WarnContext(ctx, "load settings failed", slog.String("error", err.Error()))
	}

	if overrides.MinNetPct != nil {
		params.MinNetPct = *overrides.MinNetPct
	}
	if overrides.MinEVPct != nil {
		params.MinEVPct = *overrides.MinEVPct
	}
	if len(overrides.Sports) > 0 {
		params.Sports = overrides.Sports
	}
	if overrides.APIKey != "" {
		apiKey = overrides.APIKey
	}

	return params, apiKey
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
