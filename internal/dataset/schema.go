package dataset

import (
	"fmt"
	"strings"
)

// Kind classifies a column: categorical columns hold free-form strings,
// numeric columns hold float64 values parsed at load time.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "categorical"
}

// Column is one entry of the dataset schema.
type Column struct {
	Name string
	Kind Kind
}

// SchemaError reports a column that is missing, unknown, or of the wrong
// kind for the requested operation. It always names the offending column.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}

// Required lists the columns the dashboard depends on, with their declared
// kinds. Load rejects any file missing one of these after normalization.
var Required = []Column{
	{"product_type", KindCategorical},
	{"supplier_name", KindCategorical},
	{"location", KindCategorical},
	{"transportation_modes", KindCategorical},
	{"shipping_carriers", KindCategorical},
	{"routes", KindCategorical},
	{"inspection_results", KindCategorical},
	{"revenue_generated", KindNumeric},
	{"lead_time", KindNumeric},
	{"production_volumes", KindNumeric},
	{"defect_rates", KindNumeric},
	{"manufacturing_costs", KindNumeric},
	{"costs", KindNumeric},
	{"stock_levels", KindNumeric},
	{"order_quantities", KindNumeric},
	{"price", KindNumeric},
	{"shipping_costs", KindNumeric},
	{"profit_margin", KindNumeric},
	{"number_of_products_sold", KindNumeric},
}

// NormalizeColumn applies the canonical header rule: trim edge whitespace,
// lowercase, and replace internal spaces with underscores. Every column name
// entering the system (headers, filter keys, aggregation lookups) goes
// through this same rule so names always match.
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(name)
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
