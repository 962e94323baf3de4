package nlp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	oracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aurum_oracle_latency_seconds",
		Help:    "Oracle completion round-trip latency, by model.",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	oracleTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aurum_oracle_tokens_total",
		Help: "Oracle tokens consumed, by model.",
	}, []string{"model"})
)

// observeUsage records latency and token cost for one completed oracle call.
// Providers that report no usage are simply not observed.
func observeUsage(u *TokenUsage) {
	if u == nil {
		return
	}
	oracleLatency.WithLabelValues(u.Model).Observe(
		(time.Duration(u.LatencyMS) * time.Millisecond).Seconds())
	oracleTokens.WithLabelValues(u.Model).Add(float64(u.TotalTokens))
}
