package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	seen   time.Time
}

// limiter keeps one token bucket per client. Buckets not touched for idle are
// forgotten.
type limiter struct {
	perSec float64
	burst  float64
	idle   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

func newLimiter(perSec float64, burst int, idle time.Duration) *limiter {
	return &limiter{
		perSec:  perSec,
		burst:   float64(burst),
		idle:    idle,
		buckets: make(map[string]*bucket),
	}
}

func (l *limiter) allowAt(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{tokens: l.burst, seen: now}
		l.buckets[client] = b
	}
	b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.seen).Seconds()*l.perSec)
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep runs at most once per idle period.
func (l *limiter) sweep(now time.Time) {
	if l.idle <= 0 || now.Sub(l.swept) < l.idle {
		return
	}
	l.swept = now
	for client, b := range l.buckets {
		if now.Sub(b.seen) > l.idle {
			delete(l.buckets, client)
		}
	}
}

// retryAfter is the whole number of seconds until one token is back.
func (l *limiter) retryAfter() int {
	return int(math.Ceil(1 / l.perSec))
}

// RateLimit limits each client to perMinute requests with bursts of up to
// burst. perMinute <= 0 turns limiting off; burst is at least 1.
func RateLimit(perMinute, burst int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	l := newLimiter(float64(perMinute)/60, burst, 10*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allowAt(clientIP(r), time.Now()) {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
				deny(w, http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the first X-Forwarded-For hop when present, else the peer host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
