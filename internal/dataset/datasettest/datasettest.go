// Package datasettest builds small in-memory datasets for tests across the
// filter, analytics, export, report and server packages.
package datasettest

import (
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"supplydash/internal/dataset"
)

// Row is one test record. Zero values are valid cells; only the fields a
// test cares about need to be set.
type Row struct {
	ProductType string
	Supplier    string
	Location    string
	Mode        string
	Carrier     string
	Route       string
	Inspection  string

	Revenue           float64
	LeadTime          float64
	Production        float64
	DefectRate        float64
	ManufacturingCost float64
	Cost              float64
	Stock             float64
	OrderQty          float64
	Price             float64
	ShippingCost      float64
	ProfitMargin      float64
	UnitsSold         float64
}

// header matches dataset.Required, in a fixed order the CSV helper uses.
var header = []string{
	"product_type", "supplier_name", "location", "transportation_modes",
	"shipping_carriers", "routes", "inspection_results",
	"revenue_generated", "lead_time", "production_volumes", "defect_rates",
	"manufacturing_costs", "costs", "stock_levels", "order_quantities",
	"price", "shipping_costs", "profit_margin", "number_of_products_sold",
}

func ff(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// CSV renders rows as a CSV document with the full required header.
// Fields containing the delimiter are quoted by encoding/csv.
func CSV(rows []Row) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write([]string{
			r.ProductType, r.Supplier, r.Location, r.Mode,
			r.Carrier, r.Route, r.Inspection,
			ff(r.Revenue), ff(r.LeadTime), ff(r.Production), ff(r.DefectRate),
			ff(r.ManufacturingCost), ff(r.Cost), ff(r.Stock), ff(r.OrderQty),
			ff(r.Price), ff(r.ShippingCost), ff(r.ProfitMargin), ff(r.UnitsSold),
		})
	}
	w.Flush()
	return b.String()
}

// Load parses rows into a dataset, failing the test on error.
func Load(t *testing.T, rows []Row) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(CSV(rows)), nil)
	if err != nil {
		t.Fatalf("datasettest: load: %v", err)
	}
	return ds
}
