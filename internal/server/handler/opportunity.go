package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/oddsync/arbscan/internal/domain"
)

// OpportunityHandler serves opportunity detail lookups against the most
// recent persisted scan, plus archived raw snapshots for audit.
type OpportunityHandler struct {
	scans     domain.ScanStore
	snapshots domain.SnapshotReader // nil when archiving is not configured
	logger    *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(scans domain.ScanStore, snapshots domain.SnapshotReader, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		scans:     scans,
		snapshots: snapshots,
		logger:    logHandler(logger, "opportunity"),
	}
}

// GetOpportunity returns one opportunity from the latest scan by its ID.
// GET /api/opportunities/{id}
func (h *OpportunityHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing opportunity id")
		return
	}

	rec, err := h.scans.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no scan has run yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "load latest scan", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}

	for _, o := range rec.Opportunities {
		if o.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{
				"opportunity": o,
				"scan_id":     rec.ID,
				"scanned_at":  rec.StartedAt,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "opportunity not found in latest scan")
}

// ListScans returns recent scan metadata (without payloads).
// GET /api/scans?limit=20
func (h *OpportunityHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := queryFloat(r, "limit"); v != nil && *v > 0 {
		limit = int(*v)
	}
	if limit > 100 {
		limit = 100
	}

	recs, err := h.scans.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list scans", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}

	type scanSummary struct {
		ID        string          `json:"id"`
		StartedAt any             `json:"started_at"`
		Meta      domain.ScanMeta `json:"meta"`
	}
	out := make([]scanSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, scanSummary{ID: rec.ID, StartedAt: rec.StartedAt, Meta: rec.Meta})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": out})
}

// ListSnapshots returns the archived raw snapshot objects for one scan.
// GET /api/scans/{id}/snapshots
func (h *OpportunityHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.snapshotScan(w, r)
	if !ok {
		return
	}

	infos, err := h.snapshots.ListSnapshots(r.Context(), rec.StartedAt, rec.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list snapshots",
			slog.String("scan_id", rec.ID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scan_id": rec.ID, "snapshots": infos})
}

// GetSnapshot streams one source's archived JSONL snapshot for a scan.
// GET /api/scans/{id}/snapshots/{source}
func (h *OpportunityHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.snapshotScan(w, r)
	if !ok {
		return
	}

	source := domain.Source(pathParam(r, "source"))
	switch source {
	case domain.SourcePolymarket, domain.SourceKalshi, domain.SourceSportsbook:
	default:
		writeError(w, http.StatusBadRequest, "unknown snapshot source")
		return
	}

	body, err := h.snapshots.ReadSnapshot(r.Context(), rec.StartedAt, rec.ID, source)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshot archived for that source")
			return
		}
		h.logger.ErrorContext(r.Context(), "read snapshot",
			slog.String("scan_id", rec.ID), slog.String("source", string(source)),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to read snapshot")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "stream snapshot",
			slog.String("scan_id", rec.ID), slog.String("error", err.Error()))
	}
}

// snapshotScan loads the scan a snapshot request refers to, writing the
// error response itself when archiving is off or the scan is unknown.
func (h *OpportunityHandler) snapshotScan(w http.ResponseWriter, r *http.Request) (domain.ScanRecord, bool) {
	if h.snapshots == nil {
		writeError(w, http.StatusNotFound, "snapshot archiving is not configured")
		return domain.ScanRecord{}, false
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing scan id")
		return domain.ScanRecord{}, false
	}

	rec, err := h.scans.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return domain.ScanRecord{}, false
		}
		h.logger.ErrorContext(r.Context(), "load scan",
			slog.String("scan_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load scan")
		return domain.ScanRecord{}, false
	}
	return rec, true
}
