// Package report orchestrates the per-interaction pipeline: validate the
// filter spec, apply it, compute KPIs and insights over the filtered view,
// and optionally archive a snapshot of the result.
//
// One filter change means one full recomputation. There is no incremental
// state; everything is derived from the immutable dataset per call.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"supplydash/internal/analytics"
	"supplydash/internal/dataset"
	"supplydash/internal/export"
	"supplydash/internal/filter"
	"supplydash/internal/format"
	"supplydash/internal/metrics"
	"supplydash/internal/storage"
)

// FilterColumns are the categorical columns exposed as dashboard filters.
var FilterColumns = []string{
	"product_type", "supplier_name", "location", "transportation_modes",
}

// KPIValue is one computed metric. Available is false when the reduction hit
// an empty view; Value is then meaningless and Formatted reads "N/A".
type KPIValue struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Available bool    `json:"available"`
}

// InsightValue is one computed grouped-extremum fact.
type InsightValue struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Available bool    `json:"available"`
}

// ColumnValues backs one filter widget: a column and its selectable values.
type ColumnValues struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Report is the full result of one filter interaction.
type Report struct {
	RowCount  int                    `json:"row_count"`
	TotalRows int                    `json:"total_rows"`
	KPIs      []KPIValue             `json:"kpis"`
	Insights  []InsightValue         `json:"insights"`
	Routes    []analytics.ValueCount `json:"route_frequencies"`

	view dataset.View
}

// View exposes the filtered view the report was computed from, for callers
// that go on to export it.
func (r *Report) View() dataset.View { return r.view }

// Service owns the loaded dataset and an optional snapshot archive.
// Safe for concurrent use: the dataset is immutable and every Build derives
// fresh values.
type Service struct {
	ds      *dataset.Dataset
	archive storage.Archive

	// now and newID are seams for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewService wires a service around an already-loaded dataset. archive may
// be nil, which disables snapshotting.
func NewService(ds *dataset.Dataset, archive storage.Archive) *Service {
	return &Service{
		ds:      ds,
		archive: archive,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// Dataset returns the underlying dataset handle.
func (s *Service) Dataset() *dataset.Dataset { return s.ds }

// Columns lists the filterable columns with their distinct values in
// first-seen dataset order, for populating filter widgets.
func (s *Service) Columns() ([]ColumnValues, error) {
	all := s.ds.All()
	out := make([]ColumnValues, 0, len(FilterColumns))
	for _, col := range FilterColumns {
		values, err := analytics.DistinctValues(all, col)
		if err != nil {
			return nil, err
		}
		out = append(out, ColumnValues{Name: col, Values: values})
	}
	return out, nil
}

// Build runs the filter-aggregate-insight pipeline for one interaction.
//
// Errors:
//   - *dataset.SchemaError when the spec names an unknown column.
//   - Aggregations hitting an empty view do NOT error the build; the
//     affected KPIs/insights come back with Available=false.
func (s *Service) Build(ctx context.Context, spec filter.Spec) (*Report, error) {
	if err := filter.Validate(s.ds, spec); err != nil {
		metrics.IncCounter(metrics.ReportsTotal, 1, metrics.Labels{"status": "rejected"})
		return nil, err
	}

	v := filter.Apply(s.ds, spec)

	rep := &Report{
		RowCount:  v.Len(),
		TotalRows: s.ds.Len(),
		view:      v,
	}

	for _, kspec := range analytics.DefaultKPIs {
		kv := KPIValue{Name: kspec.Name, Label: kspec.Label}
		val, err := kspec.Compute(v)
		switch {
		case err == nil:
			kv.Value = val
			kv.Formatted = format.ForColumn(kspec.Column)(val)
			kv.Available = true
		case errors.Is(err, analytics.ErrEmptyAggregation):
			kv.Formatted = format.NA
		default:
			return nil, err
		}
		rep.KPIs = append(rep.KPIs, kv)
	}

	for _, ispec := range analytics.DefaultInsights {
		iv := InsightValue{Name: ispec.Name, Label: ispec.Label}
		ext, err := ispec.Compute(v)
		switch {
		case err == nil:
			iv.Key = ext.Key
			iv.Value = ext.Value
			iv.Formatted = format.ForColumn(ispec.Value)(ext.Value)
			iv.Available = true
		case errors.Is(err, analytics.ErrEmptyAggregation):
			iv.Formatted = format.NA
		default:
			return nil, err
		}
		rep.Insights = append(rep.Insights, iv)
	}

	routes, err := analytics.ValueCounts(v, "routes")
	if err != nil {
		return nil, err
	}
	rep.Routes = routes

	s.archiveSnapshot(ctx, spec, rep)
	metrics.IncCounter(metrics.ReportsTotal, 1, metrics.Labels{"status": "ok"})
	return rep, nil
}

// Export serializes the filtered subset for the given spec as CSV bytes.
func (s *Service) Export(_ context.Context, spec filter.Spec) ([]byte, error) {
	if err := filter.Validate(s.ds, spec); err != nil {
		return nil, err
	}
	return export.Serialize(filter.Apply(s.ds, spec))
}

// Snapshots lists recent archived reports, newest first. Returns nil when
// archiving is disabled.
func (s *Service) Snapshots(ctx context.Context, limit int) ([]storage.Snapshot, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.ListSnapshots(ctx, limit)
}

// archiveSnapshot saves report metadata best-effort: a dashboard that cannot
// reach its archive still answers the interaction.
func (s *Service) archiveSnapshot(ctx context.Context, spec filter.Spec, rep *Report) {
	if s.archive == nil {
		return
	}

	filters, err := json.Marshal(spec)
	if err != nil {
		log.Printf("report: encode filters for snapshot: %v", err)
		return
	}

	kpis := make(map[string]float64, len(rep.KPIs))
	for _, kv := range rep.KPIs {
		if kv.Available {
			kpis[kv.Name] = kv.Value
		}
	}

	snap := storage.Snapshot{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Filters:   string(filters),
		RowCount:  rep.RowCount,
		KPIs:      kpis,
	}
	if err := s.archive.SaveSnapshot(ctx, snap); err != nil {
		log.Printf("report: save snapshot: %v", err)
	}
}
