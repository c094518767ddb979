// Package mssql implements storage.Archive on SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"supplydash/internal/storage"
)

type Archive struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Archive, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// Init creates the snapshot table. SQL Server has no CREATE TABLE IF NOT
// EXISTS, so the statement is wrapped in an OBJECT_ID guard.
func (a *Archive) Init(ctx context.Context) error {
	const ddl = `
IF OBJECT_ID(N'report_snapshots', N'U') IS NULL
BEGIN
	CREATE TABLE report_snapshots (
		id         NVARCHAR(64) PRIMARY KEY,
		created_at DATETIMEOFFSET NOT NULL,
		filters    NVARCHAR(MAX) NOT NULL,
		row_count  INT NOT NULL,
		kpis       NVARCHAR(MAX) NOT NULL
	);
END;`
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

	// Idempotent save: insert only when the id is not already present.
	_, err = a.db.ExecContext(ctx,
		`IF NOT EXISTS (SELECT 1 FROM report_snapshots WHERE id = @p1)
		 INSERT INTO report_snapshots (id, created_at, filters, row_count, kpis)
		 VALUES (@p1, @p2, @p3, @p4, @p5)`,
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
	rows, err := a.db.QueryContext(ctx,
		`SELECT TOP (@p1) id, created_at, filters, row_count, kpis
		 FROM report_snapshots ORDER BY created_at DESC`, limit)
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
