package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurum_queries_total",
		Help: "Assistant queries processed, by resolved query type and outcome.",
	}, []string{"query_type", "outcome"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aurum_query_duration_seconds",
		Help:    "End-to-end query processing latency, including oracle calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
)

// observeQuery records one processed query. outcome is "ok" for a served
// answer, "refused" for in-band throttle refusals, "unavailable" for oracle
// transport failures.
func observeQuery(queryType, outcome string, elapsed time.Duration) {
	queriesTotal.WithLabelValues(queryType, outcome).Inc()
	queryDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
