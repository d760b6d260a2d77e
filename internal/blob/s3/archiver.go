package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/oddsync/arbscan/internal/domain"
)

// multipartThreshold is the payload size above which uploads switch to the
// multipart path. A full odds-api snapshot of every book and market can run
// to tens of megabytes on a busy slate.
const multipartThreshold = 8 * 1024 * 1024

// Archiver persists the raw quotes each scan fetched as JSONL objects and
// serves them back, so a surprising opportunity can be traced to the exact
// prices the scan saw. It implements domain.SnapshotArchiver and
// domain.SnapshotReader.
type Archiver struct {
	writer domain.BlobWriter
	reader domain.BlobReader
	now    func() time.Time
}

// NewArchiver creates a snapshot archiver over the given blob writer and
// reader.
func NewArchiver(writer domain.BlobWriter, reader domain.BlobReader) *Archiver {
	return &Archiver{writer: writer, reader: reader, now: time.Now}
}

// ArchiveSnapshot uploads one source's fetched records for a scan at
// snapshots/YYYY-MM-DD/{scanID}/{source}.jsonl. Payloads above the multipart
// threshold go through the multipart uploader.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, scanID string, source domain.Source, records any) error {
	buf, err := marshalJSONL(records)
	if err != nil {
		return fmt.Errorf("s3blob: archive %s snapshot marshal: %w", source, err)
	}
	if len(buf) == 0 {
		return nil
	}

	path := snapshotPath(a.now().UTC(), scanID, source)
	if len(buf) >= multipartThreshold {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson")
	}
	if err != nil {
		return fmt.Errorf("s3blob: archive %s snapshot upload: %w", source, err)
	}
	return nil
}

// ReadSnapshot returns the archived JSONL for one source of a scan. The key
// is partitioned by upload day; a scan that starts just before midnight is
// uploaded under the next day, so on a miss the following day is tried too.
func (a *Archiver) ReadSnapshot(ctx context.Context, startedAt time.Time, scanID string, source domain.Source) (io.ReadCloser, error) {
	day := startedAt.UTC()
	body, err := a.reader.Get(ctx, snapshotPath(day, scanID, source))
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return a.reader.Get(ctx, snapshotPath(day.AddDate(0, 0, 1), scanID, source))
}

// ListSnapshots returns the archived snapshot objects for a scan, one per
// source that produced records.
func (a *Archiver) ListSnapshots(ctx context.Context, startedAt time.Time, scanID string) ([]domain.BlobInfo, error) {
	day := startedAt.UTC()
	infos, err := a.reader.List(ctx, scanPrefix(day, scanID))
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return a.reader.List(ctx, scanPrefix(day.AddDate(0, 0, 1), scanID))
	}
	return infos, nil
}

// snapshotPath builds the S3 key for a snapshot file, partitioned by day.
//
//	snapshots/2025-01-15/{scanID}/polymarket.jsonl
func snapshotPath(at time.Time, scanID string, source domain.Source) string {
	return fmt.Sprintf("%s%s.jsonl", scanPrefix(at, scanID), source)
}

// scanPrefix is the key prefix shared by every snapshot of one scan.
func scanPrefix(at time.Time, scanID string) string {
	return fmt.Sprintf("snapshots/%s/%s/", at.Format("2006-01-02"), scanID)
}

// marshalJSONL serialises a slice value as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
// Non-slice values and empty slices produce no output.
func marshalJSONL(records any) ([]byte, error) {
	v := reflect.ValueOf(records)
	if !v.IsValid() || v.Kind() != reflect.Slice || v.Len() == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i := 0; i < v.Len(); i++ {
		if err := enc.Encode(v.Index(i).Interface()); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface checks.
var (
	_ domain.SnapshotArchiver = (*Archiver)(nil)
	_ domain.SnapshotReader   = (*Archiver)(nil)
)
