package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/proflow/proflow-back/internal/domain"
)

const feedWriteTimeout = 10 * time.Second

// feedMessage is what goes over the wire: always the full current item set,
// never a delta. Clients rebuild their view from each snapshot.
type feedMessage struct {
	Type  string            `json:"type"`
	Items []domain.WorkItem `json:"items"`
}

// FeedHub fans item snapshots out to connected WebSocket clients. The feed
// watcher pushes a fresh snapshot after every change notification.
type FeedHub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewFeedHub(logger *log.Logger) *FeedHub {
	return &FeedHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origin enforcement happens in the CORS middleware; the feed
			// accepts any upgrade that made it through the chain.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Broadcast sends the snapshot to every connected client, dropping
// connections that fail to accept the write.
func (h *FeedHub) Broadcast(items []domain.WorkItem) {
	message := feedMessage{Type: "snapshot", Items: items}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(message); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
			if h.logger != nil {
				h.logger.Printf("feed client dropped: %v", err)
			}
		}
	}
}

// ClientCount reports how many feed clients are connected.
func (h *FeedHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// register sends the initial snapshot and adds the connection under one
// lock hold. The conn only becomes visible to Broadcast once the initial
// write is done; the hub mutex is what serializes writes per connection, so
// no write may ever happen outside it.
func (h *FeedHub) register(conn *websocket.Conn, initial []domain.WorkItem, sendInitial bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sendInitial {
		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(feedMessage{Type: "snapshot", Items: initial}); err != nil {
			_ = conn.Close()
			return err
		}
	}
	h.conns[conn] = struct{}{}
	return nil
}

func (h *FeedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

// Feed upgrades the connection, sends the current snapshot, and keeps the
// client registered until it goes away.
func (api *API) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	conn, err := api.feed.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}

	// A load failure skips the initial snapshot; the client still gets the
	// next broadcast.
	items, listErr := api.itemsService.List(r.Context(), domain.ListFilter{})
	if err := api.feed.register(conn, items, listErr == nil); err != nil {
		return
	}

	// Read loop only detects disconnects; the feed is one-way.
	go func() {
		defer api.feed.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
