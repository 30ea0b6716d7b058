// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the push frame sent to connected clients.
type Event struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

const EventSessionRevoked = "session:revoked"

// Hub tracks connected clients per username and pushes session events to
// them. A user may hold several connections (browser tabs); all of them
// receive the event.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.username] == nil {
		h.clients[c.username] = make(map[*Client]struct{})
	}
	h.clients[c.username][c] = struct{}{}
	h.logger.Debug("ws client connected", zap.String("username", c.username))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.username]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
			if len(set) == 0 {
				delete(h.clients, c.username)
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			close(c.send)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	// Late register/unregister sends select on done instead of blocking
	// forever once the run loop has exited.
	close(h.done)
}

// SessionRevoked notifies every connection of the user that their session
// was destroyed. Slow clients are skipped rather than blocking the caller.
func (h *Hub) SessionRevoked(username, reason string) {
	payload, err := json.Marshal(&Event{
		Type:      EventSessionRevoked,
		Username:  username,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[username] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("ws send buffer full, dropping event", zap.String("username", username))
		}
	}
}
