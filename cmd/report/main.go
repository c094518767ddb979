// Command report runs the filter-aggregate pipeline once against a CSV file
// and prints the result, without standing up the HTTP dashboard. Useful for
// smoke-testing a dataset or scripting exports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"supplydash/internal/dataset"
	"supplydash/internal/filter"
	"supplydash/internal/report"
)

func main() {
	var (
		input   string
		filters string
		out     string
	)

	flag.StringVar(&input, "input", "", "supply-chain CSV path (required)")
	flag.StringVar(&filters, "filters", "", "JSON file with a filter spec, e.g. {\"location\":[\"Mumbai\"]}")
	flag.StringVar(&out, "out", "", "write the filtered subset as CSV to this path")
	flag.Parse()

	if input == "" {
		fatalf("missing -input")
	}

	var spec filter.Spec
	if filters != "" {
		data, err := os.ReadFile(filters)
		if err != nil {
			fatalf("read filters: %v", err)
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			fatalf("decode filters: %v", err)
		}
	}

	ds, err := dataset.Load(input)
	if err != nil {
		fatalf("load dataset: %v", err)
	}

	ctx := context.Background()
	svc := report.NewService(ds, nil)

	rep, err := svc.Build(ctx, spec)
	if err != nil {
		fatalf("build report: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "rows\t%d of %d\n", rep.RowCount, rep.TotalRows)
	for _, k := range rep.KPIs {
		fmt.Fprintf(w, "%s\t%s\n", k.Label, k.Formatted)
	}
	for _, i := range rep.Insights {
		if !i.Available {
			fmt.Fprintf(w, "%s\t%s\n", i.Label, i.Formatted)
			continue
		}
		fmt.Fprintf(w, "%s\t%s (%s)\n", i.Label, i.Key, i.Formatted)
	}
	if err := w.Flush(); err != nil {
		log.Printf("flush output: %v", err)
	}

	if out != "" {
		data, err := svc.Export(ctx, spec)
		if err != nil {
			fatalf("export: %v", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			fatalf("write %s: %v", out, err)
		}
		log.Printf("wrote %d rows to %s", rep.RowCount, out)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
