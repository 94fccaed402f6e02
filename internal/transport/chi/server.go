package chi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// maxBodyBytes bounds POST /search bodies.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Admitter decides whether a caller may search. ratelimit.Guard implements it.
type Admitter interface {
	Admit(ctx context.Context, key string) (domrl.Decision, error)
}

// Server serves the search API.
type Server struct {
	search        searchuc.Searcher
	admitter      Admitter
	health        *healthuc.Service
	limits        request.Limits
	logger        *zap.Logger
	now           func() time.Time
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. admitter may be nil to disable rate limiting.
func NewServer(
	search searchuc.Searcher,
	admitter Admitter,
	health *healthuc.Service,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		admitter: admitter,
		health:   health,
		limits:   limits,
		logger:   logger,
		now:      time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrConfiguration, http.StatusInternalServerError, ErrorCodeConfigurationError),
		s.rateLimitedHandler,
		sentinelHandler(domain.ErrStore, http.StatusBadGateway, ErrorCodeStoreUnavailable),
	}
	return s
}

// Routes builds the chi router with the middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		r.Get("/search", s.SearchGet)
		r.Post("/search", s.SearchPost)
	})
	return r
}

// SearchGet handles GET /search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}
	s.serveSearch(w, r, params.toRequest())
}

// SearchPost handles POST /search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.serveSearch(w, r, req)
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request, in SearchRequest) {
	req, err := request.New(in.SearchValue, in.Limit, in.CaseSensitive, in.SortBy, in.Direction, s.limits)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Matches:      page.Matches(),
		TotalResults: page.Total(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var p SearchParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "searchValue", q, &p.SearchValue); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "q", q, &p.Q); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "caseSensitive", q, &p.CaseSensitive); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "sortBy", q, &p.SortBy); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "direction", q, &p.Direction); err != nil {
		return p, err
	}
	return p, nil
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

// safeDomainMessage returns a client-safe message without exposing internals.
// Validation messages describe the caller's own input and are passed through.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrConfiguration,
		domain.ErrRateLimited,
		domain.ErrStore,
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

// rateLimitedHandler handles ErrRateLimited with a Retry-After header.
func (s *Server) rateLimitedHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRateLimited) {
		return false
	}
	var rle *domain.RateLimitError
	if errors.As(err, &rle) && !rle.ResetAt.IsZero() {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rle.ResetAt, s.now())))
	}
	writeError(w, http.StatusTooManyRequests, ErrorCodeRateLimited, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// retryAfterSeconds rounds up to whole seconds, at least 1.
func retryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	return max(secs, 1)
}
