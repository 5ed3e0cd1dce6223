package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Simplici0/quote.works/internal/db"
	"github.com/Simplici0/quote.works/internal/migrations"
)

var t0 = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "ratelimit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Up(conn, zaptest.NewLogger(t)))

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sql":    NewSQLStore(conn),
	}
}

func TestStoreFixedWindow(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			window := 15 * time.Minute

			count, reset, err := store.Hit(ctx, "ip:10.0.0.1", t0, window)
			require.NoError(t, err)
			require.Equal(t, 1, count)
			require.True(t, reset.Equal(t0.Add(window)))

			count, reset, err = store.Hit(ctx, "ip:10.0.0.1", t0.Add(time.Minute), window)
			require.NoError(t, err)
			require.Equal(t, 2, count)
			require.True(t, reset.Equal(t0.Add(window)), "window must not slide")

			count, _, err = store.Hit(ctx, "ip:10.0.0.2", t0.Add(time.Minute), window)
			require.NoError(t, err)
			require.Equal(t, 1, count, "keys are counted separately")

			later := t0.Add(window)
			count, reset, err = store.Hit(ctx, "ip:10.0.0.1", later, window)
			require.NoError(t, err)
			require.Equal(t, 1, count, "expired window restarts")
			require.True(t, reset.Equal(later.Add(window)))
		})
	}
}

func TestMemoryStoreSweepsExpired(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, _, err := m.Hit(ctx, k, t0, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.Len())

	_, _, err := m.Hit(ctx, "d", t0.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
}

func TestSQLStorePrune(t *testing.T) {
	s := testStores(t)["sql"].(*SQLStore)
	ctx := context.Background()

	_, _, err := s.Hit(ctx, "old", t0, time.Minute)
	require.NoError(t, err)
	_, _, err = s.Hit(ctx, "new", t0.Add(time.Minute), time.Hour)
	require.NoError(t, err)

	n, err := s.Prune(ctx, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestLimiterAllow(t *testing.T) {
	now := t0
	l := New(NewMemoryStore(), 2, time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)

	d, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)

	now = t0.Add(20 * time.Second)
	d, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)
	require.Equal(t, 40*time.Second, d.RetryAfter)

	now = t0.Add(time.Minute)
	d, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := New(NewMemoryStore(), 1, time.Minute, WithClock(func() time.Time { return t0 }))

	h := l.Middleware(zap.New(core), ClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", nil)
	req.RemoteAddr = "192.0.2.7:5123"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"rate limit exceeded, try again later"}`, rec.Body.String())

	entries := logs.FilterMessage("rate limit exceeded").All()
	require.Len(t, entries, 1)
	require.Equal(t, "ip:192.0.2.7", entries[0].ContextMap()["key"])

	other := httptest.NewRequest(http.MethodPost, "/api/quotes", nil)
	other.RemoteAddr = "192.0.2.8:5123"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Time, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("database is locked")
}

func TestMiddlewareFailsOpen(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	l := New(failingStore{}, 1, time.Minute)

	called := false
	h := l.Middleware(zap.New(core), ClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, called)
	require.Equal(t, 1, logs.FilterMessage("rate limit store failed").Len())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	require.Equal(t, "ip:2001:db8::1", ClientIP(r))

	r.RemoteAddr = "203.0.113.9"
	require.Equal(t, "ip:203.0.113.9", ClientIP(r))
}
