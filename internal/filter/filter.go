// Package filter applies multi-valued categorical filters to a dataset,
// producing an ordered subset view.
//
// Semantics:
//   - An entry with a non-empty value list keeps only records whose cell for
//     that column is one of the listed values.
//   - An absent entry, or an entry with an empty list, places NO constraint
//     on that column. Empty selection means pass-through, not "exclude
//     everything"; the dashboard's select-all widgets depend on this.
//   - Constrained columns compose by logical AND.
//
// Apply is pure and total: it never errors and never mutates the dataset.
// A spec matching nothing simply yields an empty view.
package filter

import (
	"sort"

	"supplydash/internal/dataset"
)

// Spec maps a normalized column name to the set of allowed values.
// Decoded directly from JSON request bodies.
type Spec map[string][]string

// Validate rejects specs that name columns the dataset does not have.
// The HTTP/CLI boundary validates before applying; Apply itself stays total.
func Validate(ds *dataset.Dataset, spec Spec) error {
	for col := range spec {
		if _, err := ds.ColumnIndex(col); err != nil {
			return err
		}
	}
	return nil
}

// activeFilter is one constrained column, resolved to its index with the
// allowed values in a hash set for O(1) membership checks.
type activeFilter struct {
	col     int
	allowed map[string]struct{}
}

// Apply returns the ordered subset of ds satisfying the conjunction of all
// non-empty constraints in spec. Columns the dataset does not know are
// ignored here (Validate catches them at the boundary).
func Apply(ds *dataset.Dataset, spec Spec) dataset.View {
	active := make([]activeFilter, 0, len(spec))

	// Sort constrained column names so behavior never depends on map
	// iteration order (the result is order-independent, the allocations
	// and profiles should be too).
	names := make([]string, 0, len(spec))
	for col, values := range spec {
		if len(values) == 0 {
			continue
		}
		names = append(names, col)
	}
	sort.Strings(names)

	for _, col := range names {
		i, err := ds.ColumnIndex(col)
		if err != nil {
			continue
		}
		allowed := make(map[string]struct{}, len(spec[col]))
		for _, v := range spec[col] {
			allowed[v] = struct{}{}
		}
		active = append(active, activeFilter{col: i, allowed: allowed})
	}

	if len(active) == 0 {
		return ds.All()
	}

	idx := make([]int, 0, ds.Len())
rows:
	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)
		for _, f := range active {
			if _, ok := f.allowed[rec.Value(f.col)]; !ok {
				continue rows
			}
		}
		idx = append(idx, i)
	}
	return ds.Select(idx)
}

// ApplyView narrows an existing view by the same rules as Apply. Used to
// check idempotence and by callers that refine an already filtered view.
func ApplyView(v dataset.View, spec Spec) dataset.View {
	ds := v.Dataset()
	sub := Apply(ds, spec)

	member := make(map[int]struct{}, sub.Len())
	for i := 0; i < sub.Len(); i++ {
		member[sub.RowIndex(i)] = struct{}{}
	}

	idx := make([]int, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		ri := v.RowIndex(i)
		if _, ok := member[ri]; ok {
			idx = append(idx, ri)
		}
	}
	return ds.Select(idx)
}
