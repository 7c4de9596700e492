// Package idempotency stores response records so retried requests can be
// replayed instead of re-executed.
package idempotency

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store persists idempotency records keyed by caller scope + client key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// Key builds the storage key from the request scope and the client-supplied
// idempotency key.
func Key(scope, clientKey string) string {
	return "idem:" + scope + ":" + strings.TrimSpace(clientKey)
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Store with lazy TTL expiry. Records also live on
// the order itself, so losing this cache on restart only costs a replayed
// lookup, never a duplicated order.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory builds an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the stored value for key, if present and unexpired.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// SetNX stores value under key unless it already exists; it reports whether
// the write happened.
func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && m.now().Before(e.expiresAt) {
		return false, nil
	}
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	return true, nil
}
