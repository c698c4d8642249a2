package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()
	// SolveTotal counts solve invocations by strategy and outcome.
	SolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routeplan_solve_total", Help: "Solve invocations by strategy and outcome."},
		[]string{"strategy", "outcome"},
	)
	// SolveDuration records end-to-end solve durations in seconds.
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "routeplan_solve_duration_seconds", Help: "Solve duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"strategy"},
	)
	// SearchIterations tracks improvement iterations per search-strategy run.
	SearchIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "routeplan_search_iterations", Help: "Improvement iterations per search run.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
	)
)

// RegisterDefault registers collectors on the planner registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SolveTotal)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SearchIterations)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
