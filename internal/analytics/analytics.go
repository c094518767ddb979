// Package analytics computes scalar reductions and grouped-extremum facts
// over a filtered dataset view.
//
// Two primitives cover everything the dashboard shows:
//   - Sum / Mean over a numeric column (KPIs)
//   - ArgExtremum: group by a categorical column, reduce a numeric column
//     per group, pick the group achieving the max or min (insights)
//
// Reductions over an empty view fail with ErrEmptyAggregation rather than
// returning 0 or NaN; a zero that is really "no data" makes a misleading KPI.
package analytics

import (
	"errors"

	"supplydash/internal/dataset"
)

// ErrEmptyAggregation marks a reduction attempted over zero records.
// Recoverable: callers display a sentinel ("N/A") instead of a value.
var ErrEmptyAggregation = errors.New("aggregation over empty view")

// Reduction selects how a numeric column is collapsed.
type Reduction int

const (
	ReduceSum Reduction = iota
	ReduceMean
)

func (r Reduction) String() string {
	if r == ReduceMean {
		return "mean"
	}
	return "sum"
}

// Direction selects which extremum ArgExtremum looks for.
type Direction int

const (
	DirMax Direction = iota
	DirMin
)

func (d Direction) String() string {
	if d == DirMin {
		return "min"
	}
	return "max"
}

// Sum totals a numeric column over the view. The sum of zero records is 0.
func Sum(v dataset.View, column string) (float64, error) {
	ci, err := v.Dataset().NumericIndex(column)
	if err != nil {
		return 0, err
	}
	var total float64
	for i := 0; i < v.Len(); i++ {
		total += v.Record(i).Number(ci)
	}
	return total, nil
}

// Mean averages a numeric column over the view.
// Fails with ErrEmptyAggregation on an empty view.
func Mean(v dataset.View, column string) (float64, error) {
	ci, err := v.Dataset().NumericIndex(column)
	if err != nil {
		return 0, err
	}
	if v.Len() == 0 {
		return 0, ErrEmptyAggregation
	}
	var total float64
	for i := 0; i < v.Len(); i++ {
		total += v.Record(i).Number(ci)
	}
	return total / float64(v.Len()), nil
}

// Reduce applies the named reduction to a numeric column over the view.
// Sum of an empty view is 0; mean of an empty view is ErrEmptyAggregation.
func Reduce(v dataset.View, column string, r Reduction) (float64, error) {
	if r == ReduceMean {
		return Mean(v, column)
	}
	return Sum(v, column)
}

// Extremum is the result of a grouped-extremum reduction: the winning group
// key and its aggregate value.
type Extremum struct {
	Key   string
	Value float64
}

// ArgExtremum partitions the view by groupBy, reduces value per partition,
// and returns the partition achieving the requested extremum.
//
// Tie-breaking is deterministic: partitions are compared in first-seen order
// of their key in the view, and only a strictly better aggregate displaces
// the current winner, so under exact ties the earliest-seen group wins.
func ArgExtremum(v dataset.View, groupBy, value string, r Reduction, d Direction) (Extremum, error) {
	ds := v.Dataset()
	gi, err := ds.ColumnIndex(groupBy)
	if err != nil {
		return Extremum{}, err
	}
	vi, err := ds.NumericIndex(value)
	if err != nil {
		return Extremum{}, err
	}
	if v.Len() == 0 {
		return Extremum{}, ErrEmptyAggregation
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0, 16)

	for i := 0; i < v.Len(); i++ {
		rec := v.Record(i)
		key := rec.Value(gi)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += rec.Number(vi)
		b.count++
	}

	best := Extremum{}
	for i, key := range order {
		b := buckets[key]
		agg := b.sum
		if r == ReduceMean {
			agg = b.sum / float64(b.count)
		}
		if i == 0 {
			best = Extremum{Key: key, Value: agg}
			continue
		}
		if (d == DirMax && agg > best.Value) || (d == DirMin && agg < best.Value) {
			best = Extremum{Key: key, Value: agg}
		}
	}
	return best, nil
}

// ValueCount is one distinct value of a categorical column with its
// frequency in the view.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts tallies the distinct values of a column in first-seen order.
// An empty view yields an empty slice, not an error: a frequency chart with
// no bars is a valid state.
func ValueCounts(v dataset.View, column string) ([]ValueCount, error) {
	ci, err := v.Dataset().ColumnIndex(column)
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int)
	out := make([]ValueCount, 0, 16)
	for i := 0; i < v.Len(); i++ {
		val := v.Record(i).Value(ci)
		p, ok := pos[val]
		if !ok {
			pos[val] = len(out)
			out = append(out, ValueCount{Value: val})
			p = len(out) - 1
		}
		out[p].Count++
	}
	return out, nil
}

// DistinctValues lists the distinct values of a column in first-seen order.
// Used to populate the dashboard's filter widgets.
func DistinctValues(v dataset.View, column string) ([]string, error) {
	counts, err := ValueCounts(v, column)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out, nil
}
