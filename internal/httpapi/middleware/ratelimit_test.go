package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	h := RateLimit(60, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("want 200 got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 {
		t.Fatalf("want 429 got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After=%q", got)
	}

	// another client has its own bucket
	other := httptest.NewRequest("GET", "/", nil)
	other.RemoteAddr = "5.6.7.8:1234"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	if rr.Code != 200 {
		t.Fatalf("want 200 for other client got %d", rr.Code)
	}
}

func TestLimiter_Refills(t *testing.T) {
	l := newLimiter(1, 1, time.Minute)
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	if !l.allowAt("a", now) {
		t.Fatal("first request should pass")
	}
	if l.allowAt("a", now.Add(100*time.Millisecond)) {
		t.Fatal("second request should be limited")
	}
	if !l.allowAt("a", now.Add(1100*time.Millisecond)) {
		t.Fatal("bucket should refill after a second")
	}
}

func TestLimiter_SweepsIdleBuckets(t *testing.T) {
	l := newLimiter(1, 1, time.Minute)
	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	l.allowAt("a", now)
	l.allowAt("b", now.Add(2*time.Minute))
	if _, ok := l.buckets["a"]; ok {
		t.Fatal("idle bucket should have been dropped")
	}
	if _, ok := l.buckets["b"]; !ok {
		t.Fatal("active bucket missing")
	}
}

func TestLimiter_RetryAfter(t *testing.T) {
	if got := newLimiter(2, 1, 0).retryAfter(); got != 1 {
		t.Fatalf("2/s: %d", got)
	}
	if got := newLimiter(0.5, 1, 0).retryAfter(); got != 2 {
		t.Fatalf("30/min: %d", got)
	}
}

func TestRateLimit_DisabledAndForwardedFor(t *testing.T) {
	open := RateLimit(0, 0)(okHandler)
	req := httptest.NewRequest("GET", "/", nil)
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		open.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("disabled limiter blocked request %d", i)
		}
	}

	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	if got := clientIP(req); got != "9.9.9.9" {
		t.Fatalf("clientIP=%q", got)
	}

	plain := httptest.NewRequest("GET", "/", nil)
	plain.RemoteAddr = "[::1]:5555"
	if got := clientIP(plain); got != "::1" {
		t.Fatalf("clientIP=%q", got)
	}
	plain.RemoteAddr = "pipe"
	if got := clientIP(plain); got != "pipe" {
		t.Fatalf("clientIP=%q", got)
	}
}
