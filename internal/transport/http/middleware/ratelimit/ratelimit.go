// Package ratelimit provides rate limiting middleware using token bucket algorithm.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mandalnilabja/vecway/internal/types"
)

// bucket represents a token bucket for rate limiting.
type bucket struct {
	tokens   float64
	lastFill time.Time
	mu       sync.Mutex
}

// Limiter tracks per-client token buckets refilled at perMinute tokens a minute.
type Limiter struct {
	perMinute int
	buckets   sync.Map // map[clientIP]*bucket
	now       func() time.Time
}

// New creates a rate limiter. perMinute <= 0 disables limiting.
func New(perMinute int) *Limiter {
	return &Limiter{perMinute: perMinute, now: time.Now}
}

// Allow reports whether the client may make another request now.
func (l *Limiter) Allow(client string) bool {
	if l.perMinute <= 0 {
		return true
	}
	capacity := float64(l.perMinute)

	now := l.now()
	val, _ := l.buckets.LoadOrStore(client, &bucket{
		tokens:   capacity,
		lastFill: now,
	})
	b := val.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Refill tokens based on elapsed time
	elapsed := now.Sub(b.lastFill).Seconds()
	b.tokens += elapsed * capacity / 60.0
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastFill = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true
	}
	return false
}

// Sweep drops buckets idle long enough to have refilled completely.
func (l *Limiter) Sweep() {
	cutoff := l.now().Add(-time.Minute)
	l.buckets.Range(func(key, val any) bool {
		b := val.(*bucket)
		b.mu.Lock()
		idle := b.lastFill.Before(cutoff)
		b.mu.Unlock()
		if idle {
			l.buckets.Delete(key)
		}
		return true
	})
}

// Middleware enforces the limit per client IP (the request's remote address).
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				types.WriteError(w, http.StatusTooManyRequests, types.ErrRateLimit("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
