// Package ratelimit counts requests per key in fixed windows. Counters live in
// a Store so several server instances can share them through the database.
package ratelimit

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Store records one hit for key and returns the count in the current window
// and when that window ends. A window starts at the first hit after the previous one expired.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (count int, resetAt time.Time, err error)
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter enforces a fixed-window request budget per key.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New allows limit hits per key in every window.
func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{store: store, limit: limit, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a hit for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	count, resetAt, err := l.store.Hit(ctx, key, now, l.window)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(0, l.limit-count),
		ResetAt:   resetAt,
	}
	if !d.Allowed {
		d.RetryAfter = resetAt.Sub(now)
	}
	return d, nil
}

// ClientIP keys requests by remote address. Behind a trusted proxy, run chi's
// RealIP middleware first so RemoteAddr holds the client address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware rejects requests over the limit with 429. Store failures are
// logged and the request is let through.
func (l *Limiter) Middleware(logger *zap.Logger, key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			d, err := l.Allow(r.Context(), k)
			if err != nil {
				logger.Error("rate limit store failed", zap.String("key", k), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				secs := int(d.RetryAfter.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				logger.Warn("rate limit exceeded", zap.String("key", k), zap.Int("retry_after_s", secs))

				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded, try again later"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
