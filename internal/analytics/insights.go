package analytics

import "supplydash/internal/dataset"

// KPISpec declares one scalar dashboard metric.
type KPISpec struct {
	Name   string // stable identifier, e.g. "total_revenue"
	Label  string // display label
	Column string
	Reduce Reduction
}

// DefaultKPIs are the four headline metrics of the dashboard.
var DefaultKPIs = []KPISpec{
	{Name: "total_revenue", Label: "Total Revenue", Column: "revenue_generated", Reduce: ReduceSum},
	{Name: "avg_lead_time", Label: "Avg Lead Time", Column: "lead_time", Reduce: ReduceMean},
	{Name: "total_production", Label: "Total Production Volume", Column: "production_volumes", Reduce: ReduceSum},
	{Name: "avg_defect_rate", Label: "Avg Defect Rate", Column: "defect_rates", Reduce: ReduceMean},
}

// InsightSpec declares one grouped-extremum fact. Whether a spec reduces by
// sum or mean is part of its meaning (revenue insights total, cost and
// quality insights average) and is preserved per spec, not unified.
type InsightSpec struct {
	Name    string
	Label   string
	GroupBy string
	Value   string
	Reduce  Reduction
	Dir     Direction
}

// DefaultInsights drive the dashboard's "key insights" panel. Every entry is
// an instantiation of ArgExtremum; there are no per-insight code paths.
var DefaultInsights = []InsightSpec{
	{Name: "top_location_by_revenue", Label: "Top Location (by Revenue)",
		GroupBy: "location", Value: "revenue_generated", Reduce: ReduceSum, Dir: DirMax},
	{Name: "highest_cost_supplier", Label: "Highest Cost Supplier",
		GroupBy: "supplier_name", Value: "manufacturing_costs", Reduce: ReduceMean, Dir: DirMax},
	{Name: "most_efficient_transport_mode", Label: "Most Efficient Transport Mode (Lowest Cost)",
		GroupBy: "transportation_modes", Value: "costs", Reduce: ReduceMean, Dir: DirMin},
	{Name: "top_product_by_revenue", Label: "Top Product (by Revenue)",
		GroupBy: "product_type", Value: "revenue_generated", Reduce: ReduceSum, Dir: DirMax},
	{Name: "fastest_supplier", Label: "Fastest Supplier",
		GroupBy: "supplier_name", Value: "lead_time", Reduce: ReduceMean, Dir: DirMin},
	{Name: "most_reliable_supplier", Label: "Most Reliable Supplier",
		GroupBy: "supplier_name", Value: "defect_rates", Reduce: ReduceMean, Dir: DirMin},
}

// Compute evaluates the spec against a view.
func (s InsightSpec) Compute(v dataset.View) (Extremum, error) {
	return ArgExtremum(v, s.GroupBy, s.Value, s.Reduce, s.Dir)
}

// Compute evaluates the KPI against a view.
func (s KPISpec) Compute(v dataset.View) (float64, error) {
	return Reduce(v, s.Column, s.Reduce)
}
