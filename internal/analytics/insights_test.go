package analytics

import (
	"errors"
	"testing"

	"supplydash/internal/dataset/datasettest"
)

// One dataset with enough spread that every default insight has a distinct,
// hand-checkable winner.
func insightRows() []datasettest.Row {
	return []datasettest.Row{
		{ProductType: "haircare", Supplier: "Supplier 1", Location: "Mumbai", Mode: "Road",
			Revenue: 100, ManufacturingCost: 40, Cost: 200, LeadTime: 10, DefectRate: 2},
		{ProductType: "skincare", Supplier: "Supplier 2", Location: "Delhi", Mode: "Air",
			Revenue: 300, ManufacturingCost: 90, Cost: 500, LeadTime: 4, DefectRate: 5},
		{ProductType: "haircare", Supplier: "Supplier 1", Location: "Mumbai", Mode: "Rail",
			Revenue: 250, ManufacturingCost: 60, Cost: 100, LeadTime: 12, DefectRate: 1},
		{ProductType: "cosmetics", Supplier: "Supplier 3", Location: "Chennai", Mode: "Road",
			Revenue: 120, ManufacturingCost: 30, Cost: 300, LeadTime: 7, DefectRate: 0.5},
	}
}

func TestDefaultInsightsWinners(t *testing.T) {
	t.Parallel()

	ds := datasettest.Load(t, insightRows())
	v := ds.All()

	// Hand-computed from insightRows:
	//   revenue by location: Mumbai 350, Delhi 300, Chennai 120
	//   mfg cost mean by supplier: S1 50, S2 90, S3 30
	//   cost mean by mode: Road 250, Air 500, Rail 100
	//   revenue by product: haircare 350, skincare 300, cosmetics 120
	//   lead time mean by supplier: S1 11, S2 4, S3 7
	//   defect mean by supplier: S1 1.5, S2 5, S3 0.5
	want := map[string]Extremum{
		"top_location_by_revenue":       {"Mumbai", 350},
		"highest_cost_supplier":         {"Supplier 2", 90},
		"most_efficient_transport_mode": {"Rail", 100},
		"top_product_by_revenue":        {"haircare", 350},
		"fastest_supplier":              {"Supplier 2", 4},
		"most_reliable_supplier":        {"Supplier 3", 0.5},
	}

	if len(DefaultInsights) != len(want) {
		t.Fatalf("DefaultInsights has %d entries, want %d", len(DefaultInsights), len(want))
	}

	for _, spec := range DefaultInsights {
		spec := spec
		t.Run(spec.Name, func(t *testing.T) {
			t.Parallel()
			got, err := spec.Compute(v)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if got != want[spec.Name] {
				t.Fatalf("got (%q, %v), want %+v", got.Key, got.Value, want[spec.Name])
			}
		})
	}
}

func TestDefaultKPIs(t *testing.T) {
	t.Parallel()

	ds := datasettest.Load(t, []datasettest.Row{
		{Revenue: 100, LeadTime: 4, Production: 10, DefectRate: 1},
		{Revenue: 200, LeadTime: 8, Production: 30, DefectRate: 3},
	})
	v := ds.All()

	want := map[string]float64{
		"total_revenue":    300,
		"avg_lead_time":    6,
		"total_production": 40,
		"avg_defect_rate":  2,
	}

	for _, spec := range DefaultKPIs {
		got, err := spec.Compute(v)
		if err != nil {
			t.Fatalf("%s: %v", spec.Name, err)
		}
		if got != want[spec.Name] {
			t.Errorf("%s = %v, want %v", spec.Name, got, want[spec.Name])
		}
	}
}

func TestMeanKPIsOnEmptyViewReturnSentinel(t *testing.T) {
	t.Parallel()

	v := emptyView(t)
	for _, spec := range DefaultKPIs {
		_, err := spec.Compute(v)
		switch spec.Reduce {
		case ReduceMean:
			if !errors.Is(err, ErrEmptyAggregation) {
				t.Errorf("%s: err = %v, want ErrEmptyAggregation", spec.Name, err)
			}
		case ReduceSum:
			if err != nil {
				t.Errorf("%s: err = %v, want nil (sum of nothing is 0)", spec.Name, err)
			}
		}
	}
}
