// Package observability exposes Prometheus metrics for directory resolution
// and the HTTP API. Register must be called before serving /metrics.
package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Source names used in metric labels
const (
	SourceListing  = "listing"
	SourceIdentity = "identity"
	SourceDeclared = "declared"
	SourceSearch   = "search"
)

// Hub outcomes used in metric labels
const (
	OutcomeVerified   = "verified"
	OutcomeDropped    = "dropped"
	OutcomeFailedOpen = "failed_open"
	OutcomeFailedShut = "failed_closed"
)

var (
	registerOnce sync.Once

	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedir",
			Subsystem: "resolver",
			Name:      "runs_total",
			Help:      "Directory resolution runs by result.",
		},
		[]string{"result"},
	)
	resolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sitedir",
			Subsystem: "resolver",
			Name:      "run_duration_seconds",
			Help:      "Directory resolution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	hubOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedir",
			Subsystem: "resolver",
			Name:      "hubs_total",
			Help:      "Hub candidates by verification outcome.",
		},
		[]string{"outcome"},
	)
	sourceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedir",
			Subsystem: "resolver",
			Name:      "source_failures_total",
			Help:      "Directory reads that failed and were recovered or aborted the run.",
		},
		[]string{"source"},
	)
	associatedSites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedir",
			Subsystem: "resolver",
			Name:      "associated_sites_total",
			Help:      "Associated sites contributed to the tree, by source.",
		},
		[]string{"source"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitedir",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitedir",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register adds the collectors to the default registry once
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			resolutions,
			resolutionDuration,
			hubOutcomes,
			sourceFailures,
			associatedSites,
			httpRequests,
			httpDuration,
		)
	})
}

// RecordResolution records one pipeline run
func RecordResolution(ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	resolutions.WithLabelValues(result).Inc()
	resolutionDuration.Observe(d.Seconds())
}

// RecordHubOutcome records a verification outcome
func RecordHubOutcome(outcome string) {
	hubOutcomes.WithLabelValues(outcome).Inc()
}

// RecordSourceFailure records a failed directory read
func RecordSourceFailure(source string) {
	sourceFailures.WithLabelValues(source).Inc()
}

// RecordAssociated records how many sites a source contributed after merge
func RecordAssociated(source string, n int) {
	if n > 0 {
		associatedSites.WithLabelValues(source).Add(float64(n))
	}
}

// UnmatchedRoute labels requests that matched no registered route
const UnmatchedRoute = "unmatched"

// RecordHTTPRequest records one served request. route is the matched mux
// pattern; client-controlled values are collapsed so label sets stay bounded.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
	default:
		method = "OTHER"
	}
	code := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}
