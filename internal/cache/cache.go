// Package cache provides the short-lived read-through cache that sits in
// front of pricing reference data. It is injected into services rather than
// accessed as a global, and invalidation is namespace-wide: writes to a
// reference table bump that table's namespace, never individual keys.
package cache

import (
	"context"
	"sync"
	"time"
)

// Namespaces for the reference data the engine reads in bursts.
const (
	NamespacePricingItems = "pricing_items"
	NamespaceTimeRules    = "time_rules"
	NamespacePackages     = "packages"
	NamespacePromotions   = "promotions"
)

// DefaultTTL keeps entries just long enough to absorb a burst of quote
// computations without serving stale prices for long.
const DefaultTTL = 30 * time.Second

// Cache is a namespaced string cache. Implementations must be safe for
// concurrent readers with occasional invalidation writes. Get misses and
// backend errors are indistinguishable on purpose: callers fall through to
// the source of truth either way.
type Cache interface {
	Get(ctx context.Context, namespace, key string) (string, bool)
	Set(ctx context.Context, namespace, key, value string, ttl time.Duration)
	Invalidate(ctx context.Context, namespace string)
}

// memoryEntry is one cached value with its expiry deadline.
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Cache for deployments without Redis and for tests.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string]map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.namespaces[namespace]
	if !ok {
		return "", false
	}
	entry, ok := entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (m *Memory) Set(_ context.Context, namespace, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.namespaces[namespace]
	if !ok {
		entries = make(map[string]memoryEntry)
		m.namespaces[namespace] = entries
	}
	entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (m *Memory) Invalidate(_ context.Context, namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, namespace)
}
