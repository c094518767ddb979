// Package metrics is a tiny facade between the dashboard and whichever
// metrics backend is configured. The core packages only ever call the
// package-level helpers; backends (Datadog, nop) live behind the Backend
// interface so no vendor code leaks into request handling.
package metrics

import "sync"

// Labels are free-form metric dimensions ("route", "status", ...).
type Labels map[string]string

// Backend receives metric writes. Implementations must be safe for
// concurrent use; writes happen on request goroutines.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics out. Called at shutdown and, for
	// buffering backends, periodically.
	Flush() error
}

// nop drops everything. It is the default so the dashboard runs without any
// metrics configuration.
type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nop{}
)

// SetBackend installs the process-wide backend. Call once at startup.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nop{}
		return
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

func Flush() error {
	return current().Flush()
}

// Metric names used by the dashboard. Kept here so backend switch statements
// and call sites cannot drift apart.
const (
	RequestsTotal          = "dashboard_requests_total"
	ReportsTotal           = "dashboard_reports_total"
	RequestDurationSeconds = "dashboard_request_duration_seconds"
)
