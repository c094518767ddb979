package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"supplydash/internal/config"
)

// Load reads a CSV dataset from disk with default options.
//
// Errors:
//   - I/O failures wrap the underlying error.
//   - A required column missing after header normalization fails with
//     *SchemaError naming that column.
//   - An unparseable cell in a numeric column fails with an error naming
//     the column and line.
func Load(path string) (*Dataset, error) {
	return LoadOptions(path, nil)
}

// LoadOptions is Load with an explicit option bag (comma, trim_space).
func LoadOptions(path string, opt config.Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// Read parses a CSV stream into a Dataset.
//
// Header cells are normalized (BOM strip on the first cell, TrimSpace,
// lowercase, spaces to underscores). All columns in Required must be present;
// their kinds are declared up front. Any extra column has its kind inferred
// from the data: numeric when every non-empty cell parses as a float.
func Read(r io.Reader, opt config.Options) (*Dataset, error) {
	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	line := 0
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	hdr, err := readRec()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	names := make([]string, len(hdr))
	index := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		n := NormalizeColumn(h)
		names[i] = n
		index[n] = i
	}

	required := make(map[string]Kind, len(Required))
	for _, c := range Required {
		if _, ok := index[c.Name]; !ok {
			return nil, &SchemaError{Column: c.Name, Reason: "required column missing"}
		}
		required[c.Name] = c.Kind
	}

	var raw [][]string
	for {
		rec, err := readRec()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read line %d: %w", line, err)
		}
		row := make([]string, len(names))
		for i := range names {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			if trim {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		raw = append(raw, row)
	}

	cols := make([]Column, len(names))
	for i, n := range names {
		kind, declared := required[n]
		if !declared {
			kind = inferKind(raw, i)
		}
		cols[i] = Column{Name: n, Kind: kind}
	}

	rows := make([]Record, len(raw))
	for ri, row := range raw {
		nums := make([]float64, len(cols))
		for ci, col := range cols {
			if col.Kind != KindNumeric {
				continue
			}
			f, err := strconv.ParseFloat(row[ci], 64)
			if err != nil {
				return nil, fmt.Errorf("column %q line %d: parse %q as number: %w",
					col.Name, ri+2, row[ci], err)
			}
			nums[ci] = f
		}
		rows[ri] = Record{cells: row, nums: nums}
	}

	return &Dataset{cols: cols, index: index, rows: rows}, nil
}

// inferKind decides the kind of an undeclared column: numeric iff the column
// has at least one non-empty cell and every non-empty cell parses as float.
func inferKind(rows [][]string, col int) Kind {
	seen := false
	for _, row := range rows {
		v := row[col]
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return KindCategorical
		}
		seen = true
	}
	if !seen {
		return KindCategorical
	}
	return KindNumeric
}
