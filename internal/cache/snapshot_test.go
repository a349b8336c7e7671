package cache

import (
	"testing"

	"github.com/proflow/proflow-back/internal/domain"
)

func TestSnapshotCacheMissUntilSet(t *testing.T) {
	c := NewSnapshotCache()
	if _, ok := c.Get(); ok {
		t.Fatalf("expected miss before first Set")
	}

	c.Set([]domain.WorkItem{{Title: "A"}})
	items, ok := c.Get()
	if !ok || len(items) != 1 {
		t.Fatalf("expected hit with one item, got ok=%v items=%v", ok, items)
	}
}

func TestSnapshotCacheEmptySetIsAHit(t *testing.T) {
	c := NewSnapshotCache()
	c.Set(nil)
	items, ok := c.Get()
	if !ok {
		t.Fatalf("an empty snapshot is still a valid snapshot")
	}
	if len(items) != 0 {
		t.Fatalf("expected empty snapshot, got %v", items)
	}
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	c := NewSnapshotCache()
	c.Set([]domain.WorkItem{{Title: "A"}})
	c.Invalidate()
	if _, ok := c.Get(); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestSnapshotCacheIsolatesCopies(t *testing.T) {
	c := NewSnapshotCache()
	c.Set([]domain.WorkItem{{Title: "A", Tags: []domain.Tag{{Label: "Sơn"}}}})

	items, _ := c.Get()
	items[0].Tags[0].Label = "mutated"

	again, _ := c.Get()
	if again[0].Tags[0].Label != "Sơn" {
		t.Fatalf("expected cache contents isolated from returned copies")
	}
}
