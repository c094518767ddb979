// Package config defines the dashboard service configuration and its
// validation. The config is a single JSON document loaded at startup;
// validation produces a list of issues rather than failing on the first
// problem so operators see everything wrong with a file in one pass.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding, addressed by a dotted config path.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// Service is the top-level dashboard configuration.
type Service struct {
	// Name is the logical service name used for metrics tagging.
	Name string `json:"name"`

	Source  Source     `json:"source"`
	Server  Server     `json:"server"`
	Storage Storage    `json:"storage"`
	Metrics MetricsCfg `json:"metrics"`

	// Loader holds CSV reader options (comma, trim_space, has_header).
	Loader Options `json:"loader"`
}

type Source struct {
	// Path to the supply-chain CSV dataset.
	Path string `json:"path"`
}

type Server struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
}

type Storage struct {
	// Kind selects the snapshot archive backend: "sqlite" | "postgres" |
	// "mssql" | "" (archiving disabled).
	Kind string `json:"kind"`
	// DSN for the selected backend. Environment variables are expanded.
	DSN string `json:"dsn"`
}

type MetricsCfg struct {
	// Backend: "datadog" | "none" | "".
	Backend string `json:"backend"`
	// Tags is a comma-separated list of extra metric tags ("env:prod,team:scm").
	Tags string `json:"tags"`
}

// LoadService reads and decodes a service config file.
func LoadService(path string) (Service, error) {
	var s Service
	f, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return s, fmt.Errorf("decode config %s: %w", path, err)
	}
	return s, nil
}

// ValidateService checks a decoded config for problems. Errors make the
// config unusable; warnings are advisory.
func ValidateService(s Service) []Issue {
	var issues []Issue

	if s.Source.Path == "" {
		issues = append(issues, Issue{SeverityError, "source.path", "dataset path is required"})
	}
	if s.Server.Addr == "" {
		issues = append(issues, Issue{SeverityWarning, "server.addr", "empty; defaulting to :8080"})
	}

	switch s.Storage.Kind {
	case "", "sqlite", "postgres", "mssql":
	default:
		issues = append(issues, Issue{SeverityError, "storage.kind",
			fmt.Sprintf("unknown backend %q (want sqlite, postgres or mssql)", s.Storage.Kind)})
	}
	if s.Storage.Kind != "" && s.Storage.DSN == "" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "required when storage.kind is set"})
	}

	switch s.Metrics.Backend {
	case "", "none", "datadog":
	default:
		issues = append(issues, Issue{SeverityWarning, "metrics.backend",
			fmt.Sprintf("unknown backend %q; metrics will be disabled", s.Metrics.Backend)})
	}

	return issues
}
