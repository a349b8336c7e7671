package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/proflow/proflow-back/internal/cache"
	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/notify"
	"github.com/proflow/proflow-back/internal/repository"
)

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls [][]domain.WorkItem
	ping  chan struct{}
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{ping: make(chan struct{}, 16)}
}

func (b *recordingBroadcaster) Broadcast(items []domain.WorkItem) {
	b.mu.Lock()
	b.calls = append(b.calls, items)
	b.mu.Unlock()
	select {
	case b.ping <- struct{}{}:
	default:
	}
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *recordingBroadcaster) last() []domain.WorkItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return nil
	}
	return b.calls[len(b.calls)-1]
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestWatcherRefreshesOnNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := repository.NewMemoryItemsRepository()
	snapshot := cache.NewSnapshotCache()
	notifier := notify.NewLocalNotifier()
	broadcaster := newRecordingBroadcaster()

	watcher := NewWatcher(notifier, repo, snapshot, broadcaster, nil)
	go watcher.Start(ctx)

	// Initial refresh happens before the first notification.
	waitFor(t, broadcaster.ping)
	if got := broadcaster.last(); len(got) != 0 {
		t.Fatalf("initial broadcast: got %d items, want 0", len(got))
	}

	item := domain.WorkItem{Title: "ORD-1", TaskName: "Cắt gỗ"}
	if err := repo.CreateItem(ctx, &item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := notifier.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	waitFor(t, broadcaster.ping)
	if got := broadcaster.last(); len(got) != 1 || got[0].Title != "ORD-1" {
		t.Fatalf("broadcast after change: got %+v", got)
	}

	cached, ok := snapshot.Get()
	if !ok {
		t.Fatal("snapshot should be populated after refresh")
	}
	if len(cached) != 1 {
		t.Fatalf("cached snapshot: got %d items, want 1", len(cached))
	}
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	repo := repository.NewMemoryItemsRepository()
	watcher := NewWatcher(notify.NewLocalNotifier(), repo, cache.NewSnapshotCache(), newRecordingBroadcaster(), nil)

	done := make(chan struct{})
	go func() {
		watcher.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}

type failingListRepository struct {
	repository.ItemsRepository
	mu   sync.Mutex
	fail bool
}

func (r *failingListRepository) setFail(v bool) {
	r.mu.Lock()
	r.fail = v
	r.mu.Unlock()
}

func (r *failingListRepository) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	r.mu.Lock()
	fail := r.fail
	r.mu.Unlock()
	if fail {
		return nil, context.DeadlineExceeded
	}
	return r.ItemsRepository.ListItems(ctx)
}

func TestWatcherKeepsStaleSnapshotOnListFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := repository.NewMemoryItemsRepository()
	seed := domain.WorkItem{Title: "ORD-1"}
	if err := inner.CreateItem(ctx, &seed); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	repo := &failingListRepository{ItemsRepository: inner}
	snapshot := cache.NewSnapshotCache()
	notifier := notify.NewLocalNotifier()
	broadcaster := newRecordingBroadcaster()

	watcher := NewWatcher(notifier, repo, snapshot, broadcaster, nil)
	go watcher.Start(ctx)
	waitFor(t, broadcaster.ping)

	before := broadcaster.count()
	repo.setFail(true)
	if err := notifier.Publish(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Give the watcher a moment to process the failed refresh.
	time.Sleep(100 * time.Millisecond)
	if got := broadcaster.count(); got != before {
		t.Fatalf("broadcast count after failed refresh: got %d, want %d", got, before)
	}
	if cached, ok := snapshot.Get(); !ok || len(cached) != 1 {
		t.Fatalf("stale snapshot should survive a failed refresh, got ok=%v len=%d", ok, len(cached))
	}
}
