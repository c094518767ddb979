// Package export renders a filtered view back to CSV bytes.
//
// The output is a pure function of the view: a header row of normalized
// column names followed by one row per record in view order. Numeric cells
// use the shortest float64 form that round-trips exactly, so loading the
// exported bytes with the dataset loader reproduces the values.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"supplydash/internal/dataset"
)

// Filename is the artifact name offered for download.
const Filename = "supply_chain_filtered_report.csv"

// ContentType is the MIME type of the artifact.
const ContentType = "text/csv"

// Serialize encodes the view as CSV bytes.
func Serialize(v dataset.View) ([]byte, error) {
	ds := v.Dataset()
	cols := ds.Columns()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	cells := make([]string, len(cols))
	for i := 0; i < v.Len(); i++ {
		rec := v.Record(i)
		for ci, c := range cols {
			if c.Kind == dataset.KindNumeric {
				cells[ci] = strconv.FormatFloat(rec.Number(ci), 'f', -1, 64)
			} else {
				cells[ci] = rec.Value(ci)
			}
		}
		if err := w.Write(cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	return buf.Bytes(), nil
}
