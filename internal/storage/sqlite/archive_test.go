package sqlite

import (
	"context"
	"testing"
	"time"

	"supplydash/internal/storage"
)

func openTestArchive(t *testing.T) storage.Archive {
	t.Helper()
	ctx := context.Background()

	// A file-backed DSN: with :memory: every pooled connection would get
	// its own private database.
	dsn := "file:" + t.TempDir() + "/archive.db"
	a, err := storage.Open(ctx, storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(a.Close)

	if err := a.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	// Init twice: schema creation must be idempotent.
	if err := a.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	return a
}

func TestSaveAndListSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := openTestArchive(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snaps := []storage.Snapshot{
		{ID: "s1", CreatedAt: base, Filters: `{}`, RowCount: 100,
			KPIs: map[string]float64{"total_revenue": 5000}},
		{ID: "s2", CreatedAt: base.Add(time.Hour), Filters: `{"location":["Mumbai"]}`, RowCount: 40,
			KPIs: map[string]float64{"total_revenue": 2100, "avg_lead_time": 7.5}},
	}
	for _, s := range snaps {
		if err := a.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	got, err := a.ListSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "s2" || got[1].ID != "s1" {
		t.Fatalf("order = [%s %s], want [s2 s1]", got[0].ID, got[1].ID)
	}
	if got[0].RowCount != 40 || got[0].Filters != `{"location":["Mumbai"]}` {
		t.Fatalf("snapshot fields mangled: %+v", got[0])
	}
	if got[0].KPIs["avg_lead_time"] != 7.5 {
		t.Fatalf("kpis mangled: %+v", got[0].KPIs)
	}
	if !got[1].CreatedAt.Equal(base) {
		t.Fatalf("created_at round-trip: %v != %v", got[1].CreatedAt, base)
	}
}

func TestSaveSnapshotIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := openTestArchive(t)

	s := storage.Snapshot{ID: "dup", CreatedAt: time.Now().UTC(), Filters: `{}`, RowCount: 1,
		KPIs: map[string]float64{}}
	if err := a.SaveSnapshot(ctx, s); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := a.SaveSnapshot(ctx, s); err != nil {
		t.Fatalf("repeated save should be a no-op, got: %v", err)
	}

	got, err := a.ListSnapshots(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows after duplicate save, want 1", len(got))
	}
}

func TestListLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := openTestArchive(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := storage.Snapshot{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Filters:   `{}`,
			KPIs:      map[string]float64{},
		}
		if err := a.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := a.ListSnapshots(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(got))
	}
	if got[0].ID != "e" {
		t.Fatalf("newest first: got %s, want e", got[0].ID)
	}
}
