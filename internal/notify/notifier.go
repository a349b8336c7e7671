package notify

import (
	"context"
	"sync"
)

// Notifier is the change-notification primitive between the item store and
// everything that mirrors it. Writers publish after a successful mutation;
// subscribers receive a signal and re-query the store for the full snapshot.
// Signals carry no payload on purpose: the authoritative state always comes
// from the next read, never from the event.
type Notifier interface {
	Publish(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan struct{}, func())
}

// LocalNotifier is the in-process fallback used when Redis is not
// configured. Pending signals coalesce: a subscriber that has not drained
// its channel yet gets at most one buffered wake-up.
type LocalNotifier struct {
	mu          sync.Mutex
	subscribers map[int]chan struct{}
	nextID      int
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{
		subscribers: make(map[int]chan struct{}),
	}
}

func (n *LocalNotifier) Publish(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(_ context.Context) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	n.subscribers[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
	return ch, cancel
}
