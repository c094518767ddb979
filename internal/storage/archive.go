// Package storage persists report snapshots: one row of derived metadata
// (filters, row count, KPI values) per built report. The input dataset is
// never stored; the archive only keeps what the dashboard's history panel
// needs.
//
// Backends register themselves under a kind string from an init() function;
// importing internal/storage/all links every supported backend into a binary.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config selects and configures an archive backend.
type Config struct {
	// Kind must match a registered backend ("sqlite", "postgres", "mssql").
	Kind string
	// DSN is backend-specific.
	DSN string
}

// Snapshot is one archived report.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Filters is the filter spec that produced the report, JSON-encoded.
	Filters string `json:"filters"`

	RowCount int `json:"row_count"`

	// KPIs maps KPI name to raw value. KPIs that could not be computed
	// (empty view) are absent from the map.
	KPIs map[string]float64 `json:"kpis"`
}

// Archive is the backend-agnostic snapshot store.
//
// Semantics backends must honor:
//   - Init is idempotent (create-if-not-exists schema).
//   - SaveSnapshot with an already-saved ID is a no-op, not an error.
//   - ListSnapshots returns newest first, at most limit rows.
type Archive interface {
	Init(ctx context.Context) error
	SaveSnapshot(ctx context.Context, s Snapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
	// Close releases backend resources. Call once at shutdown.
	Close()
}

type factory func(ctx context.Context, cfg Config) (Archive, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register adds a backend factory under a kind. Call from an init() function
// in the backend package. Registering a kind twice panics: failing fast beats
// ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs an archive for the configured backend kind.
func Open(ctx context.Context, cfg Config) (Archive, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}
