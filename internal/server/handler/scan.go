package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/oddsync/arbscan/internal/domain"
	"github.com/oddsync/arbscan/internal/engine"
)

// ScanOverrides carries per-request tuning from query parameters; nil fields
// fall back to stored settings.
type ScanOverrides struct {
	MinNetPct *float64
	MinEVPct  *float64
	Sports    []string
	APIKey    string
}

// ScanRunner executes one full scan.
type ScanRunner interface {
	RunScan(ctx context.Context, overrides ScanOverrides) (engine.Result, error)
}

// ScanHandler serves the scan endpoint.
type ScanHandler struct {
	runner ScanRunner
	logger *slog.Logger
}

// NewScanHandler creates a ScanHandler.
func NewScanHandler(runner ScanRunner, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{runner: runner, logger: logHandler(logger, "scan")}
}

// RunScan triggers a scan and returns the ranked opportunities with metadata.
// GET /api/scan?min_pct=0.5&min_ev=3&sports=NBA,NFL&api_key=...
func (h *ScanHandler) RunScan(w http.ResponseWriter, r *http.Request) {
	overrides := ScanOverrides{
		MinNetPct: queryFloat(r, "min_pct"),
		MinEVPct:  queryFloat(r, "min_ev"),
		Sports:    queryList(r, "sports"),
		APIKey:    r.URL.Query().Get("api_key"),
	}

	result, err := h.runner.RunScan(r.Context(), overrides)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan failed", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, domain.ErrInvalidKey):
			writeError(w, http.StatusUnauthorized, "odds api key is invalid or expired")
		case errors.Is(err, domain.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, "odds api usage limit reached")
		default:
			writeError(w, http.StatusInternalServerError, "scan failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
