package events

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionEvent is a single entry on the session feed. Seq increases
// monotonically across the hub, so subscribers can detect gaps and
// replays.
type SessionEvent struct {
	Seq       int64     `json:"seq"`
	Type      string    `json:"type"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email,omitempty"`
	At        time.Time `json:"at"`
}

// Hub fans session events out to connected websocket subscribers. A
// single mutex guards both the subscriber set and the sequence counter
// so events reach every subscriber in the same order they were
// published.
type Hub struct {
	mu      sync.Mutex
	seq     int64
	clients map[*Client]struct{}
	closed  bool
	logger  *zap.Logger
}

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: map[*Client]struct{}{}, logger: logger}
}

// Publish numbers the event and queues it for every subscriber. Slow
// subscribers whose buffers are full are dropped rather than allowed to
// stall the feed.
func (h *Hub) Publish(eventType, accountID, email string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.seq++
	event := SessionEvent{
		Seq:       h.seq,
		Type:      eventType,
		AccountID: accountID,
		Email:     email,
		At:        time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal session event", zap.Error(err))
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("session feed subscriber too slow, dropping",
				zap.String("remote", client.remoteAddr))
			h.detach(client)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(client.send)
		return
	}
	h.clients[client] = struct{}{}
	h.logger.Info("session feed subscriber connected",
		zap.String("remote", client.remoteAddr),
		zap.Int("subscribers", len(h.clients)))
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(client)
}

// detach must be called with the hub mutex held.
func (h *Hub) detach(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown closes every subscriber connection and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		close(client.send)
	}
	h.clients = map[*Client]struct{}{}
}
