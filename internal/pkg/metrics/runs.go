package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runsapi_runs_created_total",
			Help: "Total number of run records created",
		},
		[]string{"category"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runsapi_list_cache_lookups_total",
			Help: "Total number of list cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordRunCreated counts a created run record
func RecordRunCreated(category string) {
	runsCreated.WithLabelValues(category).Inc()
}

// RecordCacheLookup counts a list cache lookup. result is one of
// "hit", "miss" or "error".
func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "runsapi_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
	},
	[]string{"name"},
)

// SetBreakerState records the state of the named circuit breaker
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}
