package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok := m.Get(ctx, NamespacePricingItems, "missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	m.Set(ctx, NamespacePricingItems, "key", "value", time.Minute)
	got, ok := m.Get(ctx, NamespacePricingItems, "key")
	if !ok || got != "value" {
		t.Fatalf("Get = (%q, %v), want (value, true)", got, ok)
	}
}

func TestMemoryEntriesExpire(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, NamespaceTimeRules, "key", "value", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := m.Get(ctx, NamespaceTimeRules, "key"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestMemoryInvalidateDropsWholeNamespace(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, NamespacePricingItems, "a", "1", time.Minute)
	m.Set(ctx, NamespacePricingItems, "b", "2", time.Minute)
	m.Set(ctx, NamespaceTimeRules, "c", "3", time.Minute)

	m.Invalidate(ctx, NamespacePricingItems)

	if _, ok := m.Get(ctx, NamespacePricingItems, "a"); ok {
		t.Error("invalidated namespace entry a still readable")
	}
	if _, ok := m.Get(ctx, NamespacePricingItems, "b"); ok {
		t.Error("invalidated namespace entry b still readable")
	}
	if got, ok := m.Get(ctx, NamespaceTimeRules, "c"); !ok || got != "3" {
		t.Error("invalidation must not cross namespaces")
	}
}

func TestMemoryZeroTTLFallsBackToDefault(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, NamespacePromotions, "key", "value", 0)
	if _, ok := m.Get(ctx, NamespacePromotions, "key"); !ok {
		t.Fatal("entry with zero TTL should use the default TTL, not expire immediately")
	}
}
