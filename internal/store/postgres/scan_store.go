package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddsync/arbscan/internal/domain"
)

// ScanStore implements domain.ScanStore using PostgreSQL. Metadata and the
// opportunity payload are stored as JSONB so the detail endpoint can serve
// lookups against the last scan without rescanning.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new ScanStore backed by the given connection pool.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

// Insert persists one scan record.
func (s *ScanStore) Insert(ctx context.Context, rec domain.ScanRecord) error {
	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return fmt.Errorf("postgres: marshal scan meta: %w", err)
	}
	oppsJSON, err := json.Marshal(rec.Opportunities)
	if err != nil {
		return fmt.Errorf("postgres: marshal scan opportunities: %w", err)
	}

	const query = `
		INSERT INTO scans (id, started_at, meta, opportunities)
		VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, query, rec.ID, rec.StartedAt, metaJSON, oppsJSON); err != nil {
		return fmt.Errorf("postgres: insert scan %s: %w", rec.ID, err)
	}
	return nil
}

// Latest returns the most recent scan, or domain.ErrNotFound when no scan
// has run yet.
func (s *ScanStore) Latest(ctx context.Context) (domain.ScanRecord, error) {
	const query = `
		SELECT id, started_at, meta, opportunities
		FROM scans ORDER BY started_at DESC LIMIT 1`
	return s.scanRow(ctx, query)
}

// GetByID returns one scan by its ID, or domain.ErrNotFound.
func (s *ScanStore) GetByID(ctx context.Context, id string) (domain.ScanRecord, error) {
	const query = `
		SELECT id, started_at, meta, opportunities
		FROM scans WHERE id = $1`
	return s.scanRow(ctx, query, id)
}

// ListRecent returns the newest scans, most recent first.
func (s *ScanStore) ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT id, started_at, meta, opportunities
		FROM scans ORDER BY started_at DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scans: %w", err)
	}
	defer rows.Close()

	var recs []domain.ScanRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list scans rows: %w", err)
	}
	return recs, nil
}

func (s *ScanStore) scanRow(ctx context.Context, query string, args ...any) (domain.ScanRecord, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScanRecord{}, domain.ErrNotFound
		}
		return domain.ScanRecord{}, err
	}
	return rec, nil
}

func scanRecord(scan func(dest ...any) error) (domain.ScanRecord, error) {
	var (
		rec      domain.ScanRecord
		metaJSON []byte
		oppsJSON []byte
	)
	if err := scan(&rec.ID, &rec.StartedAt, &metaJSON, &oppsJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScanRecord{}, err
		}
		return domain.ScanRecord{}, fmt.Errorf("postgres: scan record: %w", err)
	}
	if err := json.Unmarshal(metaJSON, &rec.Meta); err != nil {
		return domain.ScanRecord{}, fmt.Errorf("postgres: unmarshal scan meta: %w", err)
	}
	if err := json.Unmarshal(oppsJSON, &rec.Opportunities); err != nil {
		return domain.ScanRecord{}, fmt.Errorf("postgres: unmarshal scan opportunities: %w", err)
	}
	return rec, nil
}

// Compile-time interface check.
var _ domain.ScanStore = (*ScanStore)(nil)
