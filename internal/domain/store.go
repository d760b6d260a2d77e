package domain

import (
	"context"
	"time"
)

// Well-known settings keys.
const (
	SettingOddsAPIKey = "odds_api_key"
	SettingMinNetPct  = "min_net_pct"
	SettingMinEVPct   = "min_ev_pct"
	SettingSports     = "sports"
)

// SettingsStore persists operator-tunable scanner settings as key/value
// pairs. Get returns ErrNotFound for unset keys.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

// SourceStatus summarizes one source's outcome within a scan.
//
//	ok | empty | error | invalid_key | quota_exceeded | no_key
type SourceStatus string

const (
	StatusOK            SourceStatus = "ok"
	StatusEmpty         SourceStatus = "empty"
	StatusError         SourceStatus = "error"
	StatusInvalidKey    SourceStatus = "invalid_key"
	StatusQuotaExceeded SourceStatus = "quota_exceeded"
	StatusNoKey         SourceStatus = "no_key"
)

// ScanMeta is the audit metadata for one scan run.
type ScanMeta struct {
	ScanTime        float64                 `json:"scan_time"` // seconds
	Timestamp       time.Time               `json:"timestamp"`
	TotalCount      int                     `json:"total_opportunities"`
	ArbCount        int                     `json:"arb_count"`
	EVCount         int                     `json:"ev_count"`
	Sources         map[Source]SourceStatus `json:"sources"`
	Errors          []string                `json:"errors"`
	PolyCount       int                     `json:"poly_count"`
	KalshiCount     int                     `json:"kalshi_count"`
	SportsbookCount int                     `json:"sportsbook_count"`
}

// ScanRecord is one persisted scan: its metadata plus the opportunity payload
// so the detail endpoint can serve lookups without rescanning.
type ScanRecord struct {
	ID            string
	StartedAt     time.Time
	Meta          ScanMeta
	Opportunities []Opportunity
}

// ScanStore persists scan audit records.
type ScanStore interface {
	Insert(ctx context.Context, rec ScanRecord) error
	Latest(ctx context.Context) (ScanRecord, error)
	GetByID(ctx context.Context, id string) (ScanRecord, error)
	ListRecent(ctx context.Context, limit int) ([]ScanRecord, error)
}
