package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

// Engine Prometheus metrics.
var (
	EngineOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devsift",
			Name:      "engine_operations_total",
			Help:      "Total number of engine operations",
		},
		[]string{"op", "status"},
	)

	EngineOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devsift",
			Name:      "engine_operation_duration_seconds",
			Help:      "Engine operation duration in seconds, including time spent fetching for loads",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	EngineGeneration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "devsift",
			Name:      "engine_generation",
			Help:      "Id of the active load generation",
		},
	)

	EngineRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "devsift",
			Name:      "engine_rows",
			Help:      "Number of rows in the active load generation",
		},
	)

	EngineCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devsift",
			Name:      "engine_cache_total",
			Help:      "Query result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineOperationsTotal)
	prometheus.MustRegister(EngineOperationDuration)
	prometheus.MustRegister(EngineGeneration)
	prometheus.MustRegister(EngineRows)
	prometheus.MustRegister(EngineCacheTotal)
	engineMetricsRegistered = true
}

// EngineObserver records engine telemetry into the package metrics.
type EngineObserver struct{}

var _ query.Observer = EngineObserver{}

// ObserveOperation counts one engine operation and its duration.
func (EngineObserver) ObserveOperation(op string, err error, elapsed time.Duration) {
	EngineOperationsTotal.WithLabelValues(op, query.Outcome(err)).Inc()
	EngineOperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveGeneration publishes the active generation.
func (EngineObserver) ObserveGeneration(generation uint64, rows int) {
	EngineGeneration.Set(float64(generation))
	EngineRows.Set(float64(rows))
}

// ObserveCache counts a result cache lookup.
func (EngineObserver) ObserveCache(hit bool) {
	EngineCacheTotal.WithLabelValues(query.CacheResult(hit)).Inc()
}
