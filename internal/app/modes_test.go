package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/oddsync/arbscan/internal/config"
	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/server/handler"
)

type fakeSettingsStore struct {
	values map[string]string
	err    error
}

func (f *fakeSettingsStore) Get(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeSettingsStore) Set(ctx context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettingsStore) All(ctx context.Context) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

func testApp(settings *fakeSettingsStore) *App {
	cfg := config.Defaults()
	cfg.Scan.MinNetPct = 0.5
	cfg.Scan.MinEVPct = 2.0
	cfg.Scan.Sports = []string{"NBA"}
	cfg.OddsAPI.ApiKey = "config-key"

	return &App{
		cfg:    &cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		deps:   &Dependencies{SettingsStore: settings},
	}
}

func TestResolveParamsConfigOnly(t *testing.T) {
	a := testApp(&fakeSettingsStore{values: map[string]string{}})

	params, apiKey := a.resolveParams(context.Background(), handler.ScanOverrides{})

	if params.MinNetPct != 0.5 || params.MinEVPct != 2.0 {
		t.Errorf("thresholds = (%v, %v), want config values (0.5, 2.0)", params.MinNetPct, params.MinEVPct)
	}
	if len(params.Sports) != 1 || params.Sports[0] != "NBA" {
		t.Errorf("Sports = %v, want [NBA]", params.Sports)
	}
	if apiKey != "config-key" {
		t.Errorf("apiKey = %q, want config-key", apiKey)
	}
}

func TestResolveParamsSettingsOverrideConfig(t *testing.T) {
	a := testApp(&fakeSettingsStore{values: map[string]string{
		domain.SettingMinNetPct:  "1.25",
		domain.SettingMinEVPct:   "4",
		domain.SettingSports:     "NFL, MLB",
		domain.SettingOddsAPIKey: "stored-key",
	}})

	params, apiKey := a.resolveParams(context.Background(), handler.ScanOverrides{})

	if params.MinNetPct != 1.25 {
		t.Errorf("MinNetPct = %v, want stored 1.25", params.MinNetPct)
	}
	if params.MinEVPct != 4 {
		t.Errorf("MinEVPct = %v, want stored 4", params.MinEVPct)
	}
	if len(params.Sports) != 2 || params.Sports[0] != "NFL" || params.Sports[1] != "MLB" {
		t.Errorf("Sports = %v, want [NFL MLB]", params.Sports)
	}
	if apiKey != "stored-key" {
		t.Errorf("apiKey = %q, want stored-key", apiKey)
	}
}

func TestResolveParamsRequestOverridesWin(t *testing.T) {
	a := testApp(&fakeSettingsStore{values: map[string]string{
		domain.SettingMinNetPct:  "1.25",
		domain.SettingOddsAPIKey: "stored-key",
	}})

	minNet := 3.0
	params, apiKey := a.resolveParams(context.Background(), handler.ScanOverrides{
		MinNetPct: &minNet,
		Sports:    []string{"NHL"},
		APIKey:    "request-key",
	})

	if params.MinNetPct != 3.0 {
		t.Errorf("MinNetPct = %v, want request override 3.0", params.MinNetPct)
	}
	if len(params.Sports) != 1 || params.Sports[0] != "NHL" {
		t.Errorf("Sports = %v, want [NHL]", params.Sports)
	}
	if apiKey != "request-key" {
		t.Errorf("apiKey = %q, want request-key", apiKey)
	}
}

func TestResolveParamsIgnoresMalformedSettings(t *testing.T) {
	a := testApp(&fakeSettingsStore{values: map[string]string{
		domain.SettingMinNetPct: "not-a-number",
		domain.SettingSports:    "",
	}})

	params, _ := a.resolveParams(context.Background(), handler.ScanOverrides{})

	if params.MinNetPct != 0.5 {
		t.Errorf("MinNetPct = %v, want config fallback 0.5", params.MinNetPct)
	}
	if len(params.Sports) != 1 || params.Sports[0] != "NBA" {
		t.Errorf("Sports = %v, want config fallback [NBA]", params.Sports)
	}
}

func TestResolveParamsSettingsStoreDown(t *testing.T) {
	a := testApp(&fakeSettingsStore{err: errors.New("connection refused")})

	params, apiKey := a.resolveParams(context.Background(), handler.ScanOverrides{})

	if params.MinNetPct != 0.5 || apiKey != "config-key" {
		t.Errorf("got (%v, %q), want config values when the store is unavailable",
			params.MinNetPct, apiKey)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"NBA,NFL", []string{"NBA", "NFL"}},
		{" NBA , NFL ", []string{"NBA", "NFL"}},
		{"NBA,,NFL,", []string{"NBA", "NFL"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := splitCSV(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
