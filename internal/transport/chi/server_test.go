package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/repository/memory"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// --- Fixtures ---

func seededSearcher(t *testing.T) searchuc.Searcher {
	t.Helper()
	repo := memory.New()
	err := repo.Put(context.Background(), "users",
		domain.NewDocument("u1", map[string]any{
			"name":      "John Doe",
			"createdAt": map[string]any{"seconds": float64(1739112493), "nanoseconds": float64(753000000)},
		}),
		domain.NewDocument("u2", map[string]any{"name": "Jane Roe"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return searchuc.New(repo, searchuc.Config{
		Collection:       "users",
		SearchableFields: []string{"name"},
		FuzzyEnabled:     true,
		TypoTolerance:    4,
	})
}

type stubSearcher struct {
	err error
	got *request.Request
}

func (s *stubSearcher) Search(_ context.Context, req *request.Request) (result.Page, error) {
	s.got = req
	if s.err != nil {
		return result.Page{}, s.err
	}
	return result.New(nil, result.Bounded, false, 0), nil
}

type failingAdmitter struct{}

func (failingAdmitter) Admit(context.Context, string) (domrl.Decision, error) {
	return domrl.Decision{}, errors.New("redis down")
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newTestServer(search searchuc.Searcher, admitter Admitter) *Server {
	health := healthuc.New(healthuc.Component{Name: "store", Pinger: pinger{}})
	return NewServer(search, admitter, health, request.DefaultLimits(), zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

// --- Tests ---

func TestSearchGet_FuzzyMatch(t *testing.T) {
	h := newTestServer(seededSearcher(t), nil).Routes()

	rec := do(t, h, http.MethodGet, "/search?searchValue=jahn", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[SearchResponse](t, rec)
	if resp.TotalResults != 1 || len(resp.Matches) != 1 {
		t.Fatalf("expected 1 match, got %+v", resp)
	}
	if resp.Matches[0]["id"] != "u1" {
		t.Errorf("expected u1, got %v", resp.Matches[0]["id"])
	}
	if resp.Matches[0]["createdAt"] != "2025-02-09T14:48:13.753Z" {
		t.Errorf("expected normalized timestamp, got %v", resp.Matches[0]["createdAt"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestSearchGet_QAlias(t *testing.T) {
	h := newTestServer(seededSearcher(t), nil).Routes()

	rec := do(t, h, http.MethodGet, "/search?q=Roe", "", nil)
	resp := decode[SearchResponse](t, rec)
	if resp.TotalResults != 1 || resp.Matches[0]["id"] != "u2" {
		t.Fatalf("expected u2, got %+v", resp)
	}
}

func TestSearchGet_NoMatchesIsEmptyArray(t *testing.T) {
	h := newTestServer(seededSearcher(t), nil).Routes()

	rec := do(t, h, http.MethodGet, "/search?searchValue=zzzzz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"matches":[]`) {
		t.Errorf("expected empty matches array, got %s", rec.Body.String())
	}
}

func TestSearchGet_BindsParams(t *testing.T) {
	stub := &stubSearcher{}
	h := newTestServer(stub, nil).Routes()

	rec := do(t, h, http.MethodGet, "/search?searchValue=doe&limit=500&caseSensitive=true&sortBy=name&direction=desc", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.got.Limit() != request.MaxLimit {
		t.Errorf("expected clamped limit %d, got %d", request.MaxLimit, stub.got.Limit())
	}
	if !stub.got.CaseSensitive() || stub.got.SortBy() != "name" || stub.got.Direction() != "desc" {
		t.Errorf("unexpected request: %+v", stub.got)
	}
}

func TestSearchGet_BadParam(t *testing.T) {
	h := newTestServer(&stubSearcher{}, nil).Routes()

	rec := do(t, h, http.MethodGet, "/search?searchValue=doe&limit=ten", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec).Code; got != ErrorCodeBadRequest {
		t.Errorf("expected %q, got %q", ErrorCodeBadRequest, got)
	}
}

func TestSearchPost(t *testing.T) {
	h := newTestServer(seededSearcher(t), nil).Routes()

	rec := do(t, h, http.MethodPost, "/search", `{"searchValue":"j","sortBy":"name","direction":"desc"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[SearchResponse](t, rec)
	if resp.TotalResults != 2 || resp.Matches[0]["id"] != "u1" || resp.Matches[1]["id"] != "u2" {
		t.Fatalf("expected [u1 u2], got %+v", resp.Matches)
	}
}

func TestSearchPost_InvalidBody(t *testing.T) {
	h := newTestServer(&stubSearcher{}, nil).Routes()

	rec := do(t, h, http.MethodPost, "/search", `{"searchValue":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"missing value", "/search", nil, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"bad sortBy", "/search?q=x&sortBy=a-b", nil, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"bad direction", "/search?q=x&direction=up", nil, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"not configured", "/search?q=x", domain.ErrConfiguration, http.StatusInternalServerError, ErrorCodeConfigurationError},
		{"store", "/search?q=x", domain.NewStoreError("bounded scan", errors.New("conn reset")), http.StatusBadGateway, ErrorCodeStoreUnavailable},
		{"unknown", "/search?q=x", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&stubSearcher{err: tt.err}, nil).Routes()
			rec := do(t, h, http.MethodGet, tt.target, "", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, resp.Code)
			}
			if strings.Contains(resp.Message, "conn reset") {
				t.Errorf("store internals leaked: %q", resp.Message)
			}
		})
	}
}

func TestRateLimit_HeadersAndRejection(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	limiter := ratelimituc.NewSlidingWindow(2, time.Minute, ratelimituc.WithClock(func() time.Time { return now }))
	srv := newTestServer(&stubSearcher{}, ratelimituc.NewGuard(limiter, zap.NewNop()))
	srv.now = func() time.Time { return now }
	h := srv.Routes()
	origin := map[string]string{"Origin": "https://app.example"}

	for i, wantRemaining := range []string{"1", "0"} {
		rec := do(t, h, http.MethodGet, "/search?q=x", "", origin)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		if got := rec.Header().Get(HeaderRateLimitRemaining); got != wantRemaining {
			t.Errorf("request %d: expected remaining %s, got %s", i, wantRemaining, got)
		}
		if got := rec.Header().Get(HeaderRateLimitLimit); got != "2" {
			t.Errorf("request %d: expected limit 2, got %s", i, got)
		}
	}

	rec := do(t, h, http.MethodGet, "/search?q=x", "", origin)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec).Code; got != ErrorCodeRateLimited {
		t.Errorf("expected %q, got %q", ErrorCodeRateLimited, got)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("expected Retry-After 60, got %q", got)
	}
	if got := rec.Header().Get(HeaderRateLimitReset); got != "1700000060" {
		t.Errorf("expected reset 1700000060, got %q", got)
	}

	other := do(t, h, http.MethodGet, "/search?q=x", "", map[string]string{"Origin": "https://other.example"})
	if other.Code != http.StatusOK {
		t.Errorf("other origin should have its own window, got %d", other.Code)
	}
}

func TestRateLimit_FallsBackToClientIP(t *testing.T) {
	limiter := ratelimituc.NewSlidingWindow(1, time.Minute)
	h := newTestServer(&stubSearcher{}, ratelimituc.NewGuard(limiter, zap.NewNop())).Routes()

	first := do(t, h, http.MethodGet, "/search?q=x", "", map[string]string{"X-Real-IP": "10.0.0.1"})
	second := do(t, h, http.MethodGet, "/search?q=x", "", map[string]string{"X-Real-IP": "10.0.0.1"})
	third := do(t, h, http.MethodGet, "/search?q=x", "", map[string]string{"X-Real-IP": "10.0.0.2"})

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests || third.Code != http.StatusOK {
		t.Fatalf("expected 200/429/200, got %d/%d/%d", first.Code, second.Code, third.Code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := newTestServer(&stubSearcher{}, ratelimituc.NewGuard(failingAdmitter{}, zap.NewNop())).Routes()

	rec := do(t, h, http.MethodGet, "/search?q=x", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(HeaderRateLimitLimit) != "" {
		t.Error("expected no rate limit headers when the limiter is unavailable")
	}
}

func TestRateLimit_NotAppliedToHealth(t *testing.T) {
	limiter := ratelimituc.NewSlidingWindow(1, time.Minute)
	h := newTestServer(&stubSearcher{}, ratelimituc.NewGuard(limiter, zap.NewNop())).Routes()

	for range 3 {
		if rec := do(t, h, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	health := healthuc.New(
		healthuc.Component{Name: "store", Pinger: pinger{}},
		healthuc.Component{Name: "rate_limit", Pinger: pinger{err: errors.New("down")}},
	)
	srv := NewServer(&stubSearcher{}, nil, health, request.DefaultLimits(), zap.NewNop())

	rec := do(t, srv.Routes(), http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decode[HealthResponse](t, rec)
	if resp.Status != "degraded" || resp.Checks["store"] != "ok" || resp.Checks["rate_limit"] != "error" {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&stubSearcher{}, nil).Routes(), http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := do(t, h, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec).Code; got != ErrorCodeInternalError {
		t.Errorf("expected %q, got %q", ErrorCodeInternalError, got)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Unix(100, 0)
	if got := retryAfterSeconds(now.Add(1500*time.Millisecond), now); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := retryAfterSeconds(now.Add(-time.Second), now); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}
