package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckEmpty indicates the engine runs but has no generation yet.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Generation describes the active generation in a Report.
type Generation struct {
	ID       uint64
	Rows     int
	Locator  string
	LoadedAt time.Time
}

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	Generation *Generation
}

// Service coordinates health checks.
type Service struct {
	engine EngineStatus
	redis  Pinger
}

// New creates a Service. redis can be nil.
func New(engine EngineStatus, redis Pinger) *Service {
	return &Service{engine: engine, redis: redis}
}

// Check runs health checks against all components. An engine without data
// is degraded; a stopped engine is unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var gen *Generation

	st, err := s.engine.Status(ctx)
	switch {
	case err != nil:
		checks["engine"] = CheckError
	case !st.Loaded:
		checks["engine"] = CheckEmpty
	default:
		checks["engine"] = CheckOK
		gen = &Generation{ID: st.Generation, Rows: st.Rows, Locator: st.Locator, LoadedAt: st.LoadedAt}
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			checks["redis"] = CheckError
		} else {
			checks["redis"] = CheckOK
		}
	}

	status := Healthy
	if checks["engine"] == CheckError {
		status = Unhealthy
	} else {
		for _, v := range checks {
			if v != CheckOK {
				status = Degraded
				break
			}
		}
	}

	return Report{Status: status, Checks: checks, Generation: gen}
}
