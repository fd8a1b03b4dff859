package api

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/settings-resolver/internal/config"
)

func newTestSettings(t *testing.T, environ ...string) config.Settings {
	t.Helper()

	settings, err := config.Resolve(config.NewSnapshot(environ, nil))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return settings
}

func newTestRouter(t *testing.T, settings config.Settings, opts ...RouterOption) http.Handler {
	t.Helper()

	handler, err := NewHandler(settings)
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	router, err := NewRouter(handler, zaptest.NewLogger(t), opts...)
	if err != nil {
		t.Fatalf("NewRouter returned error: %v", err)
	}
	return router
}

func newDevRouter(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()
	return newTestRouter(t, newTestSettings(t, "DEBUG=True"), append([]RouterOption{WithLogging(false)}, opts...)...)
}

// newLocalRequest addresses the request to localhost from a loopback peer.
func newLocalRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Host = "localhost:8080"
	req.RemoteAddr = "127.0.0.1:54321"
	return req
}

func TestLoggingMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	var called bool
	handler := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := recoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestResponseRecorderWriteHeader(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &responseRecorder{ResponseWriter: underlying}
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusTeapot {
		t.Fatalf("expected status to be recorded")
	}
	if underlying.Code != http.StatusTeapot {
		t.Fatalf("expected status to propagate to ResponseWriter")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newDevRouter(t)

	req := newLocalRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newLocalRequest(http.MethodGet, "/api/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestWithRateLimiterOptionAppliesLimiter(t *testing.T) {
	router := newDevRouter(t, WithRateLimiter(&staticLimiter{allow: false}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newLocalRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block request, got %d", rec.Code)
	}
}

func TestWithRateLimitDisablesLimiterWhenZero(t *testing.T) {
	router := newDevRouter(t, WithRateLimiter(&staticLimiter{allow: false}), WithRateLimit(0, 0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newLocalRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
	}
}

func TestRateLimitFromSettings(t *testing.T) {
	settings := newTestSettings(t, "DEBUG=True", "RATE_LIMIT_RPS=1", "RATE_LIMIT_BURST=1")
	router := newTestRouter(t, settings, WithLogging(false))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newLocalRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, newLocalRequest(http.MethodGet, "/api/health", nil))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block second request, got %d", rec2.Code)
	}

	other := newLocalRequest(http.MethodGet, "/api/health", nil)
	other.RemoteAddr = "127.0.0.2:40000"
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, other)
	if rec3.Code != http.StatusOK {
		t.Fatalf("expected a different client to have its own bucket, got %d", rec3.Code)
	}
}

func TestNewRouterWithZeroSettings(t *testing.T) {
	handler, err := NewHandler(config.Settings{})
	if err != nil {
		t.Fatalf("NewHandler returned error: %v", err)
	}
	if _, err := NewRouter(handler, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("expected empty settings to build a closed router, got %v", err)
	}
}
