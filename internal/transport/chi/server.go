package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
	"github.com/kailas-cloud/devsift/internal/domain/search/request"
	"github.com/kailas-cloud/devsift/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/devsift/internal/logger"
	healthuc "github.com/kailas-cloud/devsift/internal/usecase/health"
	"github.com/kailas-cloud/devsift/internal/usecase/query"
)

const maxQueryBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Engine is the query engine surface the HTTP API needs.
type Engine interface {
	Load(ctx context.Context, locator string) (query.LoadSummary, error)
	Query(ctx context.Context, req *request.Request) (result.Result, error)
	Distinct(ctx context.Context) (result.Distinct, error)
	Row(ctx context.Context, ordinal int) (device.Row, device.RawRecord, error)
}

// Server serves the devsift HTTP API.
type Server struct {
	engine        Engine
	health        *healthuc.Service
	locators      LocatorPolicy
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// LocatorPolicy decides which locators POST /v1/load may fetch.
type LocatorPolicy interface {
	Allows(locator string) bool
}

// NewServer creates an HTTP API server. A nil policy rejects every load.
func NewServer(engine Engine, health *healthuc.Service, locators LocatorPolicy, logger *zap.Logger) *Server {
	s := &Server{
		engine:   engine,
		health:   health,
		locators: locators,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		queryErrorHandler,
		sentinelHandler(domain.ErrNotLoaded, http.StatusConflict, ErrorCodeNotLoaded),
		malformedInputHandler,
		loadErrorHandler,
		sentinelHandler(domain.ErrRowNotFound, http.StatusNotFound, ErrorCodeRowNotFound),
		sentinelHandler(domain.ErrEngineClosed, http.StatusServiceUnavailable, ErrorCodeUnavailable),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/load", s.Load)
		r.Post("/query", s.Query)
		r.Get("/distinct", s.Distinct)
		r.Get("/rows/{ordinal}", s.GetRow)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Load handles POST /v1/load.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "url is required")
		return
	}
	if s.locators == nil || !s.locators.Allows(req.URL) {
		s.logger.Warn("Load rejected", zap.String("locator", req.URL))
		writeError(w, http.StatusForbidden, ErrorCodeLocatorNotAllowed, "locator is not in source.allowed_locators")
		return
	}

	sum, err := s.engine.Load(r.Context(), req.URL)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoadResponse{Count: sum.Count, Generation: sum.Generation})
}

// Query handles POST /v1/query. An empty body is the unrestricted query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var in request.Input
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	req, err := in.Build()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.engine.Query(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rows := res.Rows()
	if rows == nil {
		rows = []*device.Row{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Rows:       rows,
		Total:      res.Total(),
		Generation: res.Generation(),
	})
}

// Distinct handles GET /v1/distinct.
func (s *Server) Distinct(w http.ResponseWriter, r *http.Request) {
	d, err := s.engine.Distinct(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, distinctToResponse(&d))
}

// GetRow handles GET /v1/rows/{ordinal}.
func (s *Server) GetRow(w http.ResponseWriter, r *http.Request) {
	var ordinal int
	err := runtime.BindStyledParameterWithOptions("simple", "ordinal", chi.URLParam(r, "ordinal"), &ordinal,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter ordinal")
		return
	}

	row, rec, err := s.engine.Row(r.Context(), ordinal)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RowResponse{Row: &row, Raw: rec.Raw()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrNotLoaded,
		domain.ErrMalformedInput,
		domain.ErrLoad,
		domain.ErrRowNotFound,
		domain.ErrEngineClosed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// queryErrorHandler reports the offending query field and reason.
func queryErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) {
		return false
	}
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    ErrorCodeInvalidQuery,
			"message": qe.Error(),
			"field":   qe.Field,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, msg)
	return true
}

// malformedInputHandler reports the position of the first bad record.
func malformedInputHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrMalformedInput) {
		return false
	}
	var mie *domain.MalformedInputError
	if errors.As(err, &mie) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":     ErrorCodeMalformedInput,
			"message":  msg,
			"position": mie.Position,
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, ErrorCodeMalformedInput, msg)
	return true
}

// loadErrorHandler handles transport failures, exposing the upstream status when known.
func loadErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrLoad) {
		return false
	}
	var le *domain.LoadError
	if errors.As(err, &le) && le.Status != 0 {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"code":            ErrorCodeLoadFailed,
			"message":         msg,
			"upstream_status": le.Status,
		})
		return true
	}
	writeError(w, http.StatusBadGateway, ErrorCodeLoadFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
