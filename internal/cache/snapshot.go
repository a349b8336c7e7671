package cache

import (
	"sync"
	"time"

	"github.com/proflow/proflow-back/internal/domain"
)

// SnapshotCache mirrors the latest full item set from the store. Mutations
// invalidate it, reads fill it through ListItems, and the feed watcher
// replaces it after every change notification. It is eventually consistent:
// a write shows up on the next read or refresh, never by local patching.
type SnapshotCache struct {
	mu          sync.RWMutex
	items       []domain.WorkItem
	valid       bool
	refreshedAt time.Time
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns a copy of the cached snapshot and whether one is held.
func (c *SnapshotCache) Get() ([]domain.WorkItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil, false
	}
	return cloneItems(c.items), true
}

// Set replaces the snapshot.
func (c *SnapshotCache) Set(items []domain.WorkItem) {
	cloned := cloneItems(items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = cloned
	c.valid = true
	c.refreshedAt = time.Now().UTC()
}

// Invalidate drops the snapshot so the next read falls through to the store.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.valid = false
}

// RefreshedAt reports when the snapshot was last replaced.
func (c *SnapshotCache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

func cloneItems(items []domain.WorkItem) []domain.WorkItem {
	cloned := make([]domain.WorkItem, len(items))
	for i, item := range items {
		cloned[i] = item
		cloned[i].Tags = append([]domain.Tag(nil), item.Tags...)
	}
	return cloned
}
