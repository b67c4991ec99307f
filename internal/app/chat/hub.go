package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"callchat/internal/pkg/logx"
)

// Hub tracks every live client, announced or not, and fans out broadcasts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool

	// wg counts registered clients until their cleanup has run.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logx.Component("hub"),
	}
}

// Register adds c to the broadcast set. It returns false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[c.ID()] = c
	h.wg.Add(1)

	h.logger.Debug().Str("conn_id", c.ID()).Int("total_clients", len(h.clients)).Msg("Client connected.")
	return true
}

// Unregister removes c from the broadcast set.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID()]; !ok {
		return
	}

	delete(h.clients, c.ID())
	h.wg.Done()

	h.logger.Debug().Str("conn_id", c.ID()).Int("total_clients", len(h.clients)).Msg("Client disconnected.")
}

// Broadcast queues event for every connected client. Clients with a full queue
// miss the event.
func (h *Hub) Broadcast(event string, data any) {
	message, err := encodeEnvelope(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast.")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if err := c.enqueue(message); err != nil {
			h.logger.Warn().Err(err).Str("conn_id", c.ID()).Str("event", event).Msg("Broadcast dropped for client.")
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Shutdown refuses new clients, closes every connected client and waits until
// their disconnect cleanup has finished or ctx expires.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	h.logger.Info().Int("clients", len(clients)).Msg("Closing all client connections.")

	for _, c := range clients {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info().Msg("Hub shutdown complete.")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
