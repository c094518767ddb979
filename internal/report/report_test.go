package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"supplydash/internal/dataset"
	"supplydash/internal/dataset/datasettest"
	"supplydash/internal/filter"
	"supplydash/internal/storage"
)

// fakeArchive records snapshots in memory.
type fakeArchive struct {
	saved   []storage.Snapshot
	saveErr error
}

func (f *fakeArchive) Init(context.Context) error { return nil }

func (f *fakeArchive) SaveSnapshot(_ context.Context, s storage.Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeArchive) ListSnapshots(_ context.Context, limit int) ([]storage.Snapshot, error) {
	if limit > len(f.saved) {
		limit = len(f.saved)
	}
	out := make([]storage.Snapshot, 0, limit)
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.saved[i])
	}
	return out, nil
}

func (f *fakeArchive) Close() {}

func sampleRows() []datasettest.Row {
	return []datasettest.Row{
		{ProductType: "haircare", Supplier: "Supplier 1", Location: "Mumbai", Mode: "Road",
			Route: "Route A", Revenue: 100, LeadTime: 10, Production: 500, DefectRate: 2},
		{ProductType: "skincare", Supplier: "Supplier 2", Location: "Delhi", Mode: "Rail",
			Route: "Route B", Revenue: 200, LeadTime: 20, Production: 300, DefectRate: 4},
		{ProductType: "haircare", Supplier: "Supplier 1", Location: "Mumbai", Mode: "Road",
			Route: "Route A", Revenue: 300, LeadTime: 30, Production: 200, DefectRate: 6},
	}
}

func newTestService(t *testing.T, archive storage.Archive) (*Service, *dataset.Dataset) {
	t.Helper()
	ds := datasettest.Load(t, sampleRows())
	svc := NewService(ds, archive)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "fixed-id" }
	return svc, ds
}

func kpiByName(t *testing.T, rep *Report, name string) KPIValue {
	t.Helper()
	for _, kv := range rep.KPIs {
		if kv.Name == name {
			return kv
		}
	}
	t.Fatalf("KPI %q not in report", name)
	return KPIValue{}
}

func insightByName(t *testing.T, rep *Report, name string) InsightValue {
	t.Helper()
	for _, iv := range rep.Insights {
		if iv.Name == name {
			return iv
		}
	}
	t.Fatalf("insight %q not in report", name)
	return InsightValue{}
}

func TestBuildUnfiltered(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	rep, err := svc.Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if rep.RowCount != 3 || rep.TotalRows != 3 {
		t.Fatalf("rows = %d/%d, want 3/3", rep.RowCount, rep.TotalRows)
	}

	rev := kpiByName(t, rep, "total_revenue")
	if !rev.Available || rev.Value != 600 {
		t.Fatalf("total_revenue = %+v, want 600", rev)
	}
	if rev.Formatted != "$600" {
		t.Fatalf("total_revenue formatted = %q", rev.Formatted)
	}

	lead := kpiByName(t, rep, "avg_lead_time")
	if !lead.Available || lead.Value != 20 {
		t.Fatalf("avg_lead_time = %+v, want 20", lead)
	}
	if lead.Formatted != "20.00 days" {
		t.Fatalf("avg_lead_time formatted = %q", lead.Formatted)
	}

	top := insightByName(t, rep, "top_location_by_revenue")
	if !top.Available || top.Key != "Mumbai" || top.Value != 400 {
		t.Fatalf("top_location_by_revenue = %+v, want Mumbai/400", top)
	}

	if len(rep.Routes) != 2 {
		t.Fatalf("routes = %+v, want 2 entries", rep.Routes)
	}
	if rep.Routes[0].Value != "Route A" || rep.Routes[0].Count != 2 {
		t.Fatalf("routes[0] = %+v, want Route A x2", rep.Routes[0])
	}
}

func TestBuildFiltered(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	rep, err := svc.Build(context.Background(), filter.Spec{"product_type": {"skincare"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if rep.RowCount != 1 || rep.TotalRows != 3 {
		t.Fatalf("rows = %d/%d, want 1/3", rep.RowCount, rep.TotalRows)
	}
	rev := kpiByName(t, rep, "total_revenue")
	if rev.Value != 200 {
		t.Fatalf("total_revenue = %v, want 200", rev.Value)
	}
	top := insightByName(t, rep, "fastest_supplier")
	if top.Key != "Supplier 2" {
		t.Fatalf("fastest_supplier = %+v", top)
	}
}

func TestBuildEmptyViewMarksAbsent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	rep, err := svc.Build(context.Background(), filter.Spec{"location": {"Nowhere"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if rep.RowCount != 0 {
		t.Fatalf("RowCount = %d, want 0", rep.RowCount)
	}

	// Sums over no rows are a real 0; means and insights are absent.
	rev := kpiByName(t, rep, "total_revenue")
	if !rev.Available || rev.Value != 0 {
		t.Fatalf("total_revenue = %+v, want available 0", rev)
	}
	lead := kpiByName(t, rep, "avg_lead_time")
	if lead.Available || lead.Formatted != "N/A" {
		t.Fatalf("avg_lead_time = %+v, want N/A", lead)
	}
	for _, iv := range rep.Insights {
		if iv.Available {
			t.Fatalf("insight %q available on empty view", iv.Name)
		}
		if iv.Formatted != "N/A" {
			t.Fatalf("insight %q formatted = %q", iv.Name, iv.Formatted)
		}
	}
	if len(rep.Routes) != 0 {
		t.Fatalf("routes = %+v, want empty", rep.Routes)
	}
}

func TestBuildRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	_, err := svc.Build(context.Background(), filter.Spec{"no_such": {"x"}})

	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *dataset.SchemaError", err)
	}
}

func TestBuildArchivesSnapshot(t *testing.T) {
	t.Parallel()

	arch := &fakeArchive{}
	svc, _ := newTestService(t, arch)

	spec := filter.Spec{"product_type": {"haircare"}}
	if _, err := svc.Build(context.Background(), spec); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(arch.saved) != 1 {
		t.Fatalf("saved = %d snapshots, want 1", len(arch.saved))
	}
	snap := arch.saved[0]
	if snap.ID != "fixed-id" {
		t.Fatalf("snapshot ID = %q", snap.ID)
	}
	if snap.RowCount != 2 {
		t.Fatalf("snapshot RowCount = %d, want 2", snap.RowCount)
	}
	if snap.KPIs["total_revenue"] != 400 {
		t.Fatalf("snapshot KPIs = %v", snap.KPIs)
	}

	var decoded filter.Spec
	if err := json.Unmarshal([]byte(snap.Filters), &decoded); err != nil {
		t.Fatalf("snapshot filters not JSON: %v", err)
	}
	if got := decoded["product_type"]; len(got) != 1 || got[0] != "haircare" {
		t.Fatalf("snapshot filters = %v", decoded)
	}
}

func TestBuildSurvivesArchiveFailure(t *testing.T) {
	t.Parallel()

	arch := &fakeArchive{saveErr: errors.New("archive down")}
	svc, _ := newTestService(t, arch)

	rep, err := svc.Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build should not fail on archive error: %v", err)
	}
	if rep.RowCount != 3 {
		t.Fatalf("RowCount = %d, want 3", rep.RowCount)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	data, err := svc.Export(context.Background(), filter.Spec{"location": {"Delhi"}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	body := string(data)
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("export lines = %d, want header+1 row:\n%s", len(lines), body)
	}
	if !strings.Contains(lines[1], "Delhi") || strings.Contains(body, "Mumbai") {
		t.Fatalf("export body wrong:\n%s", body)
	}

	if _, err := svc.Export(context.Background(), filter.Spec{"bogus": {"x"}}); err == nil {
		t.Fatal("Export accepted unknown column")
	}
}

func TestColumns(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	cols, err := svc.Columns()
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != len(FilterColumns) {
		t.Fatalf("columns = %d, want %d", len(cols), len(FilterColumns))
	}
	if cols[0].Name != "product_type" {
		t.Fatalf("cols[0] = %+v", cols[0])
	}
	if len(cols[0].Values) != 2 || cols[0].Values[0] != "haircare" || cols[0].Values[1] != "skincare" {
		t.Fatalf("product_type values = %v", cols[0].Values)
	}
}

func TestSnapshotsWithoutArchive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	snaps, err := svc.Snapshots(context.Background(), 10)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if snaps != nil {
		t.Fatalf("snapshots = %v, want nil", snaps)
	}
}
