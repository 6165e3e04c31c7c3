package devsift

import "github.com/kailas-cloud/devsift/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrLoad           = domain.ErrLoad
	ErrMalformedInput = domain.ErrMalformedInput
	ErrInvalidQuery   = domain.ErrInvalidQuery
	ErrNotLoaded      = domain.ErrNotLoaded
	ErrRowNotFound    = domain.ErrRowNotFound
	ErrClosed         = domain.ErrEngineClosed
)

// Typed errors carrying details. Use errors.As() to inspect.
type (
	// LoadError reports a transport failure, with the upstream status when known.
	LoadError = domain.LoadError
	// MalformedInputError reports the position of the first undecodable record.
	MalformedInputError = domain.MalformedInputError
	// QueryError names the query field that was rejected.
	QueryError = domain.QueryError
)
