package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestNewClientLimiterDisabled(t *testing.T) {
	if limiter := newClientLimiter(0, 10); limiter != nil {
		t.Fatalf("expected nil limiter for zero rate")
	}
	if limiter := newClientLimiter(5, 0); limiter != nil {
		t.Fatalf("expected nil limiter for zero burst")
	}
}

func TestClientLimiterSeparatesClients(t *testing.T) {
	limiter := newClientLimiter(1, 1)

	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected burst to be exhausted")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected other client to be allowed")
	}
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	limiter := newClientLimiter(1, 1).(*clientLimiter)
	limiter.maxClients = 2
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("b")
	now = now.Add(clientIdleTTL + time.Second)
	limiter.Allow("c")

	if len(limiter.clients) != 1 {
		t.Fatalf("expected idle clients to be evicted, have %d", len(limiter.clients))
	}
	if _, ok := limiter.clients["c"]; !ok {
		t.Fatalf("expected new client to be tracked")
	}
}

func TestClientLimiterResetsWhenAllActive(t *testing.T) {
	limiter := newClientLimiter(1, 1).(*clientLimiter)
	limiter.maxClients = 2

	limiter.Allow("a")
	limiter.Allow("b")
	limiter.Allow("c")

	if len(limiter.clients) != 1 {
		t.Fatalf("expected table reset before adding a client, have %d", len(limiter.clients))
	}
}
