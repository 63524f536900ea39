package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Storage.Get for absent or expired keys
var ErrNotFound = errors.New("session: key not found")

// Storage is the tab-scoped key/value store backing a Session.
// It mirrors the browser's sessionStorage: string values, no persistence guarantees.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStorage keeps values in process memory with a sliding TTL
type MemoryStorage struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStorage returns an empty in-process storage; ttl <= 0 disables expiry
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStorage) expiry() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

func (m *MemoryStorage) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if m.expired(e) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	e.expiresAt = m.expiry()
	m.entries[key] = e
	return e.value, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.expiry()}
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Sweep drops expired entries and returns how many were removed
func (m *MemoryStorage) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired entries every interval until ctx is cancelled
func (m *MemoryStorage) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Namespaced prefixes every key so that several tabs can share one Storage
func Namespaced(s Storage, tabID string) Storage {
	return &namespaced{inner: s, prefix: "tab:" + tabID + ":"}
}

type namespaced struct {
	inner  Storage
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.prefix + k
	}
	return n.inner.Delete(ctx, full...)
}
