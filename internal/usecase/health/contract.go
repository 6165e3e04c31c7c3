package health

import (
	"context"

	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

// EngineStatus reports the engine's active generation.
type EngineStatus interface {
	Status(ctx context.Context) (query.Status, error)
}

// Pinger checks availability of an optional backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}
