package chi

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/devsift/internal/usecase/health"
)

// ErrorCode is the machine-readable error identifier of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeInvalidQuery      ErrorCode = "invalid_query"
	ErrorCodeNotLoaded         ErrorCode = "not_loaded"
	ErrorCodeMalformedInput    ErrorCode = "malformed_input"
	ErrorCodeLoadFailed        ErrorCode = "load_failed"
	ErrorCodeLocatorNotAllowed ErrorCode = "locator_not_allowed"
	ErrorCodeRowNotFound       ErrorCode = "row_not_found"
	ErrorCodeUnavailable       ErrorCode = "unavailable"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// LoadRequest is the body of POST /v1/load.
type LoadRequest struct {
	URL string `json:"url"`
}

// LoadResponse reports the generation a load installed.
type LoadResponse struct {
	Count      int    `json:"count"`
	Generation uint64 `json:"generation"`
}

// QueryResponse is the body of a successful POST /v1/query.
type QueryResponse struct {
	Rows       []*device.Row `json:"rows"`
	Total      int           `json:"total"`
	Generation uint64        `json:"generation"`
}

// DistinctResponse lists the distinct values of every facet field.
type DistinctResponse struct {
	Online       []bool   `json:"online"`
	Model        []string `json:"model"`
	UI           []string `json:"ui"`
	BrandName    []string `json:"brandName"`
	ProductModel []string `json:"productModel"`
	Type         []string `json:"type"`
	ParentID     []string `json:"parentid"`
	Generation   uint64   `json:"generation"`
}

// RowResponse is a single row together with its original record.
type RowResponse struct {
	*device.Row
	Raw json.RawMessage `json:"raw"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	Generation *GenerationInfo   `json:"generation,omitempty"`
}

// GenerationInfo describes the active generation.
type GenerationInfo struct {
	ID       uint64    `json:"id"`
	Rows     int       `json:"rows"`
	Locator  string    `json:"locator"`
	LoadedAt time.Time `json:"loaded_at"`
}

func distinctToResponse(d *result.Distinct) DistinctResponse {
	resp := DistinctResponse{
		Model:        texts(d.Values(device.Model)),
		UI:           texts(d.Values(device.UI)),
		BrandName:    texts(d.Values(device.BrandName)),
		ProductModel: texts(d.Values(device.ProductModel)),
		Type:         texts(d.Values(device.Type)),
		ParentID:     texts(d.Values(device.ParentID)),
		Generation:   d.Generation(),
	}
	online := d.Values(device.Online)
	resp.Online = make([]bool, len(online))
	for i, v := range online {
		resp.Online[i] = v.Truth()
	}
	return resp
}

func texts(values []device.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Str()
	}
	return out
}

func healthToResponse(report healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	resp := HealthResponse{Status: string(report.Status), Checks: checks}
	if g := report.Generation; g != nil {
		resp.Generation = &GenerationInfo{ID: g.ID, Rows: g.Rows, Locator: g.Locator, LoadedAt: g.LoadedAt}
	}
	return resp
}
