package devsift

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration

	redisAddrs    []string
	redisPassword string

	fuzzyThreshold float64
	cacheSize      int
	maxQueryLength int
	flatten        FlattenFunc

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient sets the client used for http(s) locators.
func WithHTTPClient(c *http.Client) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.httpClient = c
	})
}

// WithTimeout bounds http(s) fetches when no custom HTTP client is set.
// Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.timeout = d
	})
}

// WithRedis enables redis://<key> locators against the given Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.redisAddrs = []string{addr}
		cfg.redisPassword = password
	})
}

// WithFuzzyThreshold sets the fuzzy match threshold in (0, 1].
// Lower is stricter. Default: 0.3.
func WithFuzzyThreshold(t float64) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.fuzzyThreshold = t
	})
}

// WithCacheSize enables a per-generation cache of query results.
// Default: 0 (disabled).
func WithCacheSize(n int) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.cacheSize = n
	})
}

// WithMaxQueryLength caps the search text length in characters.
func WithMaxQueryLength(n int) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.maxQueryLength = n
	})
}

// WithFlatten replaces the default record-to-row projection.
// The function must be pure; ordinals are assigned by the client.
func WithFlatten(fn FlattenFunc) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.flatten = fn
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts, durations,
// generation and cache outcomes) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.metricsReg = reg
	})
}
