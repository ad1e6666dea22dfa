// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: 3ebd9ce5-47e5-4ed0-8271-ace95067704a

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Invocation outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNonZero  = "nonzero_exit"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "binary_not_found"
	OutcomeError    = "spawn_error"
)

var (
	registerOnce sync.Once

	toolInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calibre_api",
		Name:      "tool_invocations_total",
		Help:      "Total number of Calibre tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})
	toolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "calibre_api",
		Name:      "tool_duration_seconds",
		Help:      "Histogram of Calibre tool run durations in seconds by tool",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2.0, 12), // ~50ms up to several minutes
	}, []string{"tool"})
	activeProcesses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "calibre_api",
		Name:      "active_tool_processes",
		Help:      "Number of Calibre child processes currently running",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calibre_api",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "calibre_api",
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations in seconds by route",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2.0, 14),
	}, []string{"route"})

	watcherFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calibre_api",
		Name:      "watcher_files_total",
		Help:      "Total number of inbox files processed by the watcher by result",
	}, []string{"result"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(toolInvocations, toolDuration, activeProcesses,
			httpRequests, httpDuration, watcherFiles)
	})
}

// Tool invocation helpers
func IncToolInvocation(tool, outcome string) { toolInvocations.WithLabelValues(tool, outcome).Inc() }
func ObserveToolDuration(tool string, d time.Duration) {
	toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}
func IncActiveProcesses() { activeProcesses.Inc() }
func DecActiveProcesses() { activeProcesses.Dec() }

// HTTP helpers
func IncHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
func ObserveHTTPDuration(route string, d time.Duration) {
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Watcher helpers
func IncWatcherFile(result string) { watcherFiles.WithLabelValues(result).Inc() }
