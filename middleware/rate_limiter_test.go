package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRateLimiterExhaustsBurst(t *testing.T) {
	// Zero refill rate makes the burst a finite pool, so the test is
	// deterministic.
	rl := NewRateLimiter(0, 2)
	handler := rl.Middleware(okHandler)

	req := httptest.NewRequest("GET", "/api/v1/rooms", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusNoContent)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("exhausted burst: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	// A different client keeps its own bucket.
	other := httptest.NewRequest("GET", "/api/v1/rooms", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusNoContent {
		t.Errorf("other client: status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestRateLimiterSplitsClientsBehindProxy(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	handler := rl.Middleware(okHandler)

	first := httptest.NewRequest("GET", "/", nil)
	first.RemoteAddr = "127.0.0.1:9999"
	first.Header.Set("X-Forwarded-For", "203.0.113.7, 127.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest("GET", "/", nil)
	second.RemoteAddr = "127.0.0.1:9999"
	second.Header.Set("X-Forwarded-For", "203.0.113.8, 127.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code == http.StatusTooManyRequests {
		t.Error("clients behind the same proxy must not share a bucket")
	}
}

func TestCleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(10, 40)
	rl.allow("10.0.0.1")
	rl.allow("10.0.0.2")

	rl.cleanup(time.Now().Add(visitorTTL + time.Second))

	rl.mu.Lock()
	n := len(rl.visitors)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("%d visitors survived cleanup", n)
	}
}
