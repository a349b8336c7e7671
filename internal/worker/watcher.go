package worker

import (
	"context"
	"log"
	"time"

	"github.com/proflow/proflow-back/internal/cache"
	"github.com/proflow/proflow-back/internal/domain"
	"github.com/proflow/proflow-back/internal/notify"
	"github.com/proflow/proflow-back/internal/repository"
)

// Broadcaster receives the refreshed snapshot for fan-out to live clients.
type Broadcaster interface {
	Broadcast(items []domain.WorkItem)
}

// Watcher is the single cache writer: it listens for change notifications,
// re-queries the store, refreshes the snapshot and pushes it to the feed.
// Everything downstream observes writes only through this path.
type Watcher struct {
	notifier    notify.Notifier
	repo        repository.ItemsRepository
	snapshot    *cache.SnapshotCache
	broadcaster Broadcaster
	logger      *log.Logger
}

func NewWatcher(
	notifier notify.Notifier,
	repo repository.ItemsRepository,
	snapshot *cache.SnapshotCache,
	broadcaster Broadcaster,
	logger *log.Logger,
) *Watcher {
	return &Watcher{
		notifier:    notifier,
		repo:        repo,
		snapshot:    snapshot,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (w *Watcher) Start(ctx context.Context) {
	w.refresh(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		signals, cancel := w.notifier.Subscribe(ctx)
		w.consume(ctx, signals)
		cancel()
		if ctx.Err() != nil {
			return
		}

		// The subscription dropped (e.g. Redis connection loss); back off
		// and resubscribe.
		if w.logger != nil {
			w.logger.Printf("change subscription dropped, resubscribing")
		}
		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (w *Watcher) consume(ctx context.Context, signals <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			w.refresh(ctx)
		}
	}
}

// refresh re-queries the store. On failure the previous snapshot stays
// served; the feed simply misses one update rather than going empty.
func (w *Watcher) refresh(ctx context.Context) {
	items, err := w.repo.ListItems(ctx)
	if err != nil {
		if w.logger != nil {
			w.logger.Printf("snapshot refresh failed: %v", err)
		}
		return
	}

	w.snapshot.Set(items)
	if w.broadcaster != nil {
		w.broadcaster.Broadcast(items)
	}
}
