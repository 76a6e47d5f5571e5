// Package ws implements the WebSocket adapter for real-time query
// lifecycle events. Connections are scoped to a single matter and only
// receive events for that matter.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// conn wraps a single WebSocket connection and the matter it watches.
type conn struct {
	ws       *websocket.Conn
	matterID string
	cancel   context.CancelFunc
}

// Hub manages active WebSocket connections grouped by matter. Events
// for one matter are never delivered to another matter's clients.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*conn]struct{} // matterID -> connections
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*conn]struct{}),
	}
}

// HandleWS upgrades the request to a WebSocket connection bound to the
// matter named in the matter_id query parameter (or X-Matter-ID
// header). Connections without a matter are rejected.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	matterID := r.URL.Query().Get("matter_id")
	if matterID == "" {
		matterID = r.Header.Get("X-Matter-ID")
	}
	if matterID == "" {
		http.Error(w, "matter_id is required", http.StatusBadRequest)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws, matterID: matterID, cancel: cancel}

	h.mu.Lock()
	if h.conns[matterID] == nil {
		h.conns[matterID] = make(map[*conn]struct{})
	}
	h.conns[matterID][c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr, "matter_id", matterID)

	// Read loop (to detect disconnects and consume pings)
	go func() {
		defer func() {
			h.remove(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			_, _, err := ws.Read(ctx)
			if err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a message to every client watching the given matter.
func (h *Hub) Broadcast(ctx context.Context, matterID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns[matterID] {
		if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("websocket write failed", "error", err)
			go h.remove(c)
		}
	}
}

// ConnectionCount returns the number of active connections across all
// matters.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.conns {
		n += len(set)
	}
	return n
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.conns[c.matterID]
	if _, ok := set[c]; ok {
		c.cancel()
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, c.matterID)
		}
		slog.Info("websocket disconnected", "matter_id", c.matterID)
	}
}
