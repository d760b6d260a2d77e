package domain

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// BlobReader retrieves data from object storage.
type BlobReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// SnapshotArchiver persists raw per-source quote snapshots to cold storage
// for later inspection of what a scan actually saw.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, scanID string, source Source, records any) error
}

// SnapshotReader serves archived snapshots back, keyed by the scan they
// belong to. ReadSnapshot returns ErrNotFound when the scan's snapshot for
// that source was never archived.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, startedAt time.Time, scanID string, source Source) (io.ReadCloser, error)
	ListSnapshots(ctx context.Context, startedAt time.Time, scanID string) ([]BlobInfo, error)
}
