// Package sqlite implements storage.Archive on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"supplydash/internal/storage"
)

// Archive stores snapshots in a single table.
//
// SQLite has no native timestamp type; created_at is stored as an
// RFC3339Nano string for reliable round-trips and easy debugging, and its
// lexical order matches chronological order so ORDER BY works unchanged.
type Archive struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Archive, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() { _ = a.db.Close() }

func (a *Archive) Init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS report_snapshots (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	filters    TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	kpis       TEXT NOT NULL
)`
	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create report_snapshots: %w", err)
	}
	return nil
}

func (a *Archive) SaveSnapshot(ctx context.Context, s storage.Snapshot) error {
	kpis, err := json.Marshal(s.KPIs)
	if err != nil {
		return fmt.Errorf("encode kpis: %w", err)
	}

	// OR IGNORE gives the idempotent save the interface requires; the
	// primary key on id carries the conflict.
	_, err = a.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO report_snapshots (id, created_at, filters, row_count, kpis)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.CreatedAt.UTC().Format(time.RFC3339Nano), s.Filters, s.RowCount, string(kpis))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (a *Archive) ListSnapshots(ctx context.Context, limit int) ([]storage.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, created_at, filters, row_count, kpis
		 FROM report_snapshots ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Snapshot
	for rows.Next() {
		var s storage.Snapshot
		var created, kpis string
		if err := rows.Scan(&s.ID, &created, &s.Filters, &s.RowCount, &kpis); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad created_at %q: %w", s.ID, created, err)
		}
		s.CreatedAt = ts
		if err := json.Unmarshal([]byte(kpis), &s.KPIs); err != nil {
			return nil, fmt.Errorf("snapshot %s: decode kpis: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
