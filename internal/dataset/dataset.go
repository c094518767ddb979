// Package dataset loads the supply-chain CSV into an immutable, typed,
// in-memory table and provides ordered subset views over it.
//
// The raw file is read exactly once per path (see Cache); everything
// downstream (filtering, aggregation, export) works on *Dataset and View
// values and never mutates the loaded data.
package dataset

// Record is one row. Cells are stored positionally in schema order; numeric
// columns additionally carry their parsed float64 value.
type Record struct {
	cells []string
	nums  []float64
}

// Value returns the raw string cell for column index i.
func (r Record) Value(i int) string { return r.cells[i] }

// Number returns the parsed float64 for a numeric column index i.
// The value is only meaningful for columns of KindNumeric.
func (r Record) Number(i int) float64 { return r.nums[i] }

// Dataset is the loaded table: ordered columns, name index, ordered rows.
// Immutable after Load.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  []Record
}

// Columns returns the schema in file order.
func (d *Dataset) Columns() []Column { return d.cols }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.rows) }

// Record returns row i in load order.
func (d *Dataset) Record(i int) Record { return d.rows[i] }

// ColumnIndex resolves a normalized column name to its positional index.
// Unknown names fail with *SchemaError so bad lookups surface at the
// boundary instead of deep inside an aggregation.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	if i, ok := d.index[NormalizeColumn(name)]; ok {
		return i, nil
	}
	return 0, &SchemaError{Column: name, Reason: "unknown column"}
}

// NumericIndex resolves a column name and additionally requires it to be
// numeric.
func (d *Dataset) NumericIndex(name string) (int, error) {
	i, err := d.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	if d.cols[i].Kind != KindNumeric {
		return 0, &SchemaError{Column: name, Reason: "not a numeric column"}
	}
	return i, nil
}

// All returns a view covering every record in load order.
func (d *Dataset) All() View {
	idx := make([]int, len(d.rows))
	for i := range idx {
		idx[i] = i
	}
	return View{ds: d, idx: idx}
}

// Select returns a view over the given row indices. The slice is not copied;
// callers hand over ownership.
func (d *Dataset) Select(idx []int) View {
	return View{ds: d, idx: idx}
}

// View is an ordered subset of a dataset, held as an index list into the
// parent rows. Views are cheap to create and never copy record data.
type View struct {
	ds  *Dataset
	idx []int
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.idx) }

// Record returns the i-th record of the view.
func (v View) Record(i int) Record { return v.ds.rows[v.idx[i]] }

// RowIndex returns the dataset position of the i-th view record.
func (v View) RowIndex(i int) int { return v.idx[i] }

// Dataset returns the parent dataset.
func (v View) Dataset() *Dataset { return v.ds }
