// Package postgres implements storage.Archive on pgx.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"supplydash/internal/storage"
)

type Archive struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Archive, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Archive{pool: pool}, nil
}

func (a *Archive) Close() { a.pool.Close() }

func (a *Archive) Init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS report_snapshots (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	filters    JSONB NOT NULL,
	row_count  INTEGER NOT NULL,
	kpis       JSONB NOT NULL
)`
	if _, err := a.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create report_snapshots: %w", err)
	}
	return nil
}

func (a *Archive) SaveSnapshot(ctx context.Context, s storage.Snapshot) error {
	kpis, err := json.Marshal(s.KPIs)
	if err != nil {
		return fmt.Errorf("encode kpis: %w", err)
	}

	_, err = a.pool.Exec(ctx,
		`INSERT INTO report_snapshots (id, created_at, filters, row_count, kpis)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.CreatedAt, s.Filters, s.RowCount, string(kpis))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (a *Archive) ListSnapshots(ctx context.Context, limit int) ([]storage.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.pool.Query(ctx,
		`SELECT id, created_at, filters::text, row_count, kpis::text
		 FROM report_snapshots ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Snapshot
	for rows.Next() {
		var s storage.Snapshot
		var kpis string
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Filters, &s.RowCount, &kpis); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(kpis), &s.KPIs); err != nil {
			return nil, fmt.Errorf("snapshot %s: decode kpis: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
