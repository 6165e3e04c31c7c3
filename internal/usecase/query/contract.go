package query

import (
	"context"
	"errors"
	"time"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// Source fetches and decodes the records behind a locator.
type Source interface {
	Load(ctx context.Context, locator string) ([]device.RawRecord, error)
}

// Observer receives engine telemetry. Calls happen on the engine worker.
type Observer interface {
	ObserveOperation(op string, err error, elapsed time.Duration)
	ObserveGeneration(generation uint64, rows int)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error, time.Duration) {}
func (nopObserver) ObserveGeneration(uint64, int)                 {}
func (nopObserver) ObserveCache(bool)                             {}

// Outcome maps an operation error to a low-cardinality status label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, domain.ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, domain.ErrLoad):
		return "load_failed"
	case errors.Is(err, domain.ErrRowNotFound):
		return "row_not_found"
	case errors.Is(err, domain.ErrEngineClosed):
		return "closed"
	default:
		return "error"
	}
}

// CacheResult returns "hit" or "miss".
func CacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
