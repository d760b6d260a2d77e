package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
)

type fakeScanStore struct {
	recs map[string]domain.ScanRecord
}

func (f *fakeScanStore) Insert(ctx context.Context, rec domain.ScanRecord) error {
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeScanStore) Latest(ctx context.Context) (domain.ScanRecord, error) {
	return domain.ScanRecord{}, domain.ErrNotFound
}

func (f *fakeScanStore) GetByID(ctx context.Context, id string) (domain.ScanRecord, error) {
	rec, ok := f.recs[id]
	if !ok {
		return domain.ScanRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeScanStore) ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	return nil, nil
}

type fakeSnapshotReader struct {
	payloads map[domain.Source]string
}

func (f *fakeSnapshotReader) ReadSnapshot(ctx context.Context, startedAt time.Time, scanID string, source domain.Source) (io.ReadCloser, error) {
	p, ok := f.payloads[source]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(p)), nil
}

func (f *fakeSnapshotReader) ListSnapshots(ctx context.Context, startedAt time.Time, scanID string) ([]domain.BlobInfo, error) {
	var infos []domain.BlobInfo
	for src, p := range f.payloads {
		infos = append(infos, domain.BlobInfo{
			Path: "snapshots/2026-03-01/" + scanID + "/" + string(src) + ".jsonl",
			Size: int64(len(p)),
		})
	}
	return infos, nil
}

func snapshotFixture(t *testing.T, snapshots domain.SnapshotReader) *OpportunityHandler {
	t.Helper()
	scans := &fakeScanStore{recs: map[string]domain.ScanRecord{
		"scan-1": {ID: "scan-1", StartedAt: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOpportunityHandler(scans, snapshots, logger)
}

func snapshotRequest(scanID, source string) *http.Request {
	target := "/api/scans/" + scanID + "/snapshots"
	if source != "" {
		target += "/" + source
	}
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.SetPathValue("id", scanID)
	if source != "" {
		r.SetPathValue("source", source)
	}
	return r
}

func TestGetSnapshotStreamsArchive(t *testing.T) {
	h := snapshotFixture(t, &fakeSnapshotReader{payloads: map[domain.Source]string{
		domain.SourcePolymarket: "{\"id\":\"m1\"}\n{\"id\":\"m2\"}\n",
	}})

	w := httptest.NewRecorder()
	h.GetSnapshot(w, snapshotRequest("scan-1", "polymarket"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Content-Type = %q, want application/x-ndjson", ct)
	}
	if !strings.Contains(w.Body.String(), `"m2"`) {
		t.Errorf("body = %q, want the archived lines", w.Body.String())
	}
}

func TestGetSnapshotMissingSource(t *testing.T) {
	h := snapshotFixture(t, &fakeSnapshotReader{payloads: map[domain.Source]string{}})

	w := httptest.NewRecorder()
	h.GetSnapshot(w, snapshotRequest("scan-1", "kalshi"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when nothing was archived", w.Code)
	}
}

func TestGetSnapshotRejectsUnknownSource(t *testing.T) {
	h := snapshotFixture(t, &fakeSnapshotReader{})

	w := httptest.NewRecorder()
	h.GetSnapshot(w, snapshotRequest("scan-1", "betfair"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an unknown source", w.Code)
	}
}

func TestGetSnapshotUnknownScan(t *testing.T) {
	h := snapshotFixture(t, &fakeSnapshotReader{})

	w := httptest.NewRecorder()
	h.GetSnapshot(w, snapshotRequest("scan-9", "polymarket"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown scan", w.Code)
	}
}

func TestSnapshotEndpointsWithoutArchiving(t *testing.T) {
	h := snapshotFixture(t, nil)

	w := httptest.NewRecorder()
	h.GetSnapshot(w, snapshotRequest("scan-1", "polymarket"))
	if w.Code != http.StatusNotFound {
		t.Errorf("GetSnapshot status = %d, want 404 when archiving is off", w.Code)
	}

	w = httptest.NewRecorder()
	h.ListSnapshots(w, snapshotRequest("scan-1", ""))
	if w.Code != http.StatusNotFound {
		t.Errorf("ListSnapshots status = %d, want 404 when archiving is off", w.Code)
	}
}

func TestListSnapshotsForScan(t *testing.T) {
	h := snapshotFixture(t, &fakeSnapshotReader{payloads: map[domain.Source]string{
		domain.SourcePolymarket: "p\n",
		domain.SourceKalshi:     "k\n",
	}})

	w := httptest.NewRecorder()
	h.ListSnapshots(w, snapshotRequest("scan-1", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"polymarket.jsonl", "kalshi.jsonl", `"scan_id":"scan-1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}
