package s3blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
)

// memBlob is an in-memory blob store implementing both sides of the archive.
type memBlob struct {
	objects    map[string][]byte
	multiparts map[string]bool
}

func newMemBlob() *memBlob {
	return &memBlob{
		objects:    make(map[string][]byte),
		multiparts: make(map[string]bool),
	}
}

func (m *memBlob) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[path] = b
	return nil
}

func (m *memBlob) PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[path] = b
	m.multiparts[path] = true
	return nil
}

func (m *memBlob) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	b, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("mem: get %s: %w", path, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlob) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	var infos []domain.BlobInfo
	for path, b := range m.objects {
		if strings.HasPrefix(path, prefix) {
			infos = append(infos, domain.BlobInfo{Path: path, Size: int64(len(b))})
		}
	}
	return infos, nil
}

type record struct {
	ID   string `json:"id"`
	Note string `json:"note,omitempty"`
}

func testArchiver(store *memBlob, now time.Time) *Archiver {
	a := NewArchiver(store, store)
	a.now = func() time.Time { return now }
	return a
}

func TestArchiveAndReadBack(t *testing.T) {
	started := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	store := newMemBlob()
	a := testArchiver(store, started.Add(20*time.Second))

	records := []record{{ID: "m1"}, {ID: "m2"}}
	if err := a.ArchiveSnapshot(context.Background(), "scan-1", domain.SourcePolymarket, records); err != nil {
		t.Fatalf("ArchiveSnapshot: %v", err)
	}

	wantPath := "snapshots/2026-03-01/scan-1/polymarket.jsonl"
	if _, ok := store.objects[wantPath]; !ok {
		t.Fatalf("object not stored at %q, keys: %v", wantPath, store.objects)
	}
	if store.multiparts[wantPath] {
		t.Error("a small payload must not use the multipart path")
	}

	body, err := a.ReadSnapshot(context.Background(), started, "scan-1", domain.SourcePolymarket)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("got %d JSONL lines, want 2: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], `"m1"`) {
		t.Errorf("first line = %q, want the first record", lines[0])
	}
}

func TestArchiveUsesMultipartForLargePayloads(t *testing.T) {
	store := newMemBlob()
	a := testArchiver(store, time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC))

	// Nine 1 MiB records push the JSONL payload past the 8 MiB threshold.
	big := strings.Repeat("x", 1<<20)
	records := make([]record, 9)
	for i := range records {
		records[i] = record{ID: fmt.Sprintf("m%d", i), Note: big}
	}

	if err := a.ArchiveSnapshot(context.Background(), "scan-1", domain.SourceSportsbook, records); err != nil {
		t.Fatalf("ArchiveSnapshot: %v", err)
	}

	path := "snapshots/2026-03-01/scan-1/sportsbook.jsonl"
	if !store.multiparts[path] {
		t.Error("a payload above the threshold must go through PutMultipart")
	}
}

func TestArchiveSkipsEmptySnapshots(t *testing.T) {
	store := newMemBlob()
	a := testArchiver(store, time.Now())

	for _, records := range []any{nil, []record{}, "not a slice"} {
		if err := a.ArchiveSnapshot(context.Background(), "scan-1", domain.SourceKalshi, records); err != nil {
			t.Errorf("ArchiveSnapshot(%v): %v", records, err)
		}
	}
	if len(store.objects) != 0 {
		t.Errorf("empty snapshots must not be uploaded, got %v", store.objects)
	}
}

func TestReadSnapshotAcrossMidnight(t *testing.T) {
	// Scan starts at 23:59:50, the upload lands after midnight under the
	// next day's partition.
	started := time.Date(2026, 3, 1, 23, 59, 50, 0, time.UTC)
	store := newMemBlob()
	a := testArchiver(store, started.Add(30*time.Second))

	if err := a.ArchiveSnapshot(context.Background(), "scan-1", domain.SourceKalshi, []record{{ID: "m1"}}); err != nil {
		t.Fatalf("ArchiveSnapshot: %v", err)
	}
	if _, ok := store.objects["snapshots/2026-03-02/scan-1/kalshi.jsonl"]; !ok {
		t.Fatalf("upload should land under the next day, keys: %v", store.objects)
	}

	body, err := a.ReadSnapshot(context.Background(), started, "scan-1", domain.SourceKalshi)
	if err != nil {
		t.Fatalf("ReadSnapshot should fall through to the next day: %v", err)
	}
	body.Close()

	infos, err := a.ListSnapshots(context.Background(), started, "scan-1")
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("ListSnapshots = %v, want the next-day object", infos)
	}
}

func TestReadSnapshotMissing(t *testing.T) {
	a := testArchiver(newMemBlob(), time.Now())

	_, err := a.ReadSnapshot(context.Background(), time.Now(), "scan-1", domain.SourcePolymarket)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListSnapshotsPerScan(t *testing.T) {
	started := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	store := newMemBlob()
	a := testArchiver(store, started)

	ctx := context.Background()
	if err := a.ArchiveSnapshot(ctx, "scan-1", domain.SourcePolymarket, []record{{ID: "p"}}); err != nil {
		t.Fatal(err)
	}
	if err := a.ArchiveSnapshot(ctx, "scan-1", domain.SourceKalshi, []record{{ID: "k"}}); err != nil {
		t.Fatal(err)
	}
	if err := a.ArchiveSnapshot(ctx, "scan-2", domain.SourceKalshi, []record{{ID: "k"}}); err != nil {
		t.Fatal(err)
	}

	infos, err := a.ListSnapshots(ctx, started, "scan-1")
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("got %d snapshots for scan-1, want 2: %v", len(infos), infos)
	}
}
