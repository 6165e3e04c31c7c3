package devsift

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	generation prometheus.Gauge
	rows       prometheus.Gauge
	cache      *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devsift",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "devsift",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devsift",
			Subsystem: "sdk",
			Name:      "generation",
			Help:      "Identifier of the active generation.",
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devsift",
			Subsystem: "sdk",
			Name:      "rows",
			Help:      "Number of rows in the active generation.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devsift",
			Subsystem: "sdk",
			Name:      "query_cache_total",
			Help:      "Query result cache lookups by result.",
		}, []string{"result"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.generation); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.rows); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.cache); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("devsift: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("devsift: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations. It is also the
// engine's query.Observer.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records an operation that failed before reaching the engine.
func (o *observer) observe(op string, start time.Time, err error) {
	o.ObserveOperation(op, err, time.Since(start))
}

func (o *observer) ObserveOperation(op string, err error, dur time.Duration) {
	if o == nil {
		return
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, query.Outcome(err)).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("operation failed",
				"op", op,
				"duration", dur,
				"error", err,
			)
		} else {
			o.logger.Debug("operation completed",
				"op", op,
				"duration", dur,
			)
		}
	}
}

func (o *observer) ObserveGeneration(generation uint64, rows int) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.generation.Set(float64(generation))
		o.metrics.rows.Set(float64(rows))
	}
	if o.logger != nil {
		o.logger.Info("generation installed", "generation", generation, "rows", rows)
	}
}

func (o *observer) ObserveCache(hit bool) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.cache.WithLabelValues(query.CacheResult(hit)).Inc()
}
