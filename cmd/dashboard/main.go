package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"supplydash/internal/config"
	"supplydash/internal/dataset"
	"supplydash/internal/metrics"
	"supplydash/internal/metrics/datadog"
	"supplydash/internal/report"
	"supplydash/internal/server"
	"supplydash/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "supplydash/internal/storage/all"
)

// main is the entry point for the dashboard binary. It loads the service
// config, optionally initializes a metrics backend and a snapshot archive,
// loads the dataset once, and serves HTTP until killed.
func main() {
	var (
		cfgPath           string
		addrFlg           string
		metricsBackendFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/dashboard.json", "service config JSON path")
	flag.StringVar(&addrFlg, "addr", "", "listen address (overrides config server.addr)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (datadog, none; overrides config)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg, err := config.LoadService(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateService(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → config → env → disabled.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		serviceName := cfg.Name
		if serviceName == "" {
			serviceName = "supplydash"
		}

		tags := cfg.Metrics.Tags
		if tags == "" {
			tags = os.Getenv("METRICS_TAGS")
		}
		extraTags := datadog.ParseTagsCSV(tags)

		// The backend starts its own periodic flush goroutine; Close()
		// stops it and performs a final Flush().
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			ServiceName: serviceName,
			Tags:        extraTags,
			FlushEvery:  60 * time.Second,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v service=%v tags=%v", backendName, serviceName, extraTags)
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()

	// Snapshot archive is optional; an empty storage.kind disables it.
	var archive storage.Archive
	if cfg.Storage.Kind != "" {
		archive, err = storage.Open(ctx, storage.Config{
			Kind: cfg.Storage.Kind,
			DSN:  os.ExpandEnv(cfg.Storage.DSN),
		})
		if err != nil {
			fatalf("open archive: %v", err)
		}
		defer archive.Close()
		if err := archive.Init(ctx); err != nil {
			fatalf("init archive: %v", err)
		}
	}

	start := time.Now()
	cache := dataset.NewCacheOptions(cfg.Loader)
	ds, err := cache.Load(cfg.Source.Path)
	if err != nil {
		fatalf("load dataset: %v", err)
	}
	if *verbose {
		log.Printf("dataset: %s loaded %d rows, %d columns in %s",
			cfg.Source.Path, ds.Len(), len(ds.Columns()), time.Since(start).Truncate(time.Millisecond))
	}

	srv, err := server.New(report.NewService(ds, archive))
	if err != nil {
		fatalf("%v", err)
	}

	addr := addrFlg
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = ":8080"
	}

	if err := srv.Run(addr); err != nil {
		log.Fatalf("%v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
