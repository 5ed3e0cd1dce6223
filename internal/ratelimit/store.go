package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	lastSweep time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

func (m *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= window {
		for k, e := range m.entries {
			if !now.Before(e.resetAt) {
				delete(m.entries, k)
			}
		}
		m.lastSweep = now
	}

	e, ok := m.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = entry{resetAt: now.Add(window)}
	}
	e.count++
	m.entries[key] = e
	return e.count, e.resetAt, nil
}

// Len reports the number of tracked keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// SQLStore keeps counters in the rate_limits table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a store backed by db. The rate_limits migration must have run.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	nowMs := now.UnixMilli()
	resetMs := now.Add(window).UnixMilli()

	var count int
	var resetAt int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO rate_limits (key, count, reset_at)
		VALUES (?, 1, ?)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN rate_limits.reset_at <= ? THEN 1 ELSE rate_limits.count + 1 END,
			reset_at = CASE WHEN rate_limits.reset_at <= ? THEN excluded.reset_at ELSE rate_limits.reset_at END
		RETURNING count, reset_at
	`, key, resetMs, nowMs, nowMs).Scan(&count, &resetAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("record rate limit hit: %w", err)
	}
	return count, time.UnixMilli(resetAt), nil
}

// Prune deletes expired counters.
func (s *SQLStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE reset_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune rate limits: %w", err)
	}
	return res.RowsAffected()
}
