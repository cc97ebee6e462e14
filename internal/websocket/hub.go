package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrConnectionClosed is returned when sending to a closed connection
var ErrConnectionClosed = errors.New("connection is closed")

// ConnectionInterface is what the hub needs from a connection
type ConnectionInterface interface {
	ID() string
	ClientID() int32
	Send(data []byte) error
	Close() error
}

// Hub fans events out to the connections of each client.
// It is safe for concurrent use.
type Hub struct {
	// clients maps client ID to a map of connection ID to connection
	clients map[int32]map[string]ConnectionInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int32]map[string]ConnectionInterface),
	}
}

// Register adds a connection under its client
func (h *Hub) Register(conn ConnectionInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientID := conn.ClientID()
	if h.clients[clientID] == nil {
		h.clients[clientID] = make(map[string]ConnectionInterface)
	}
	h.clients[clientID][conn.ID()] = conn

	log.Debug().
		Int32("client_id", clientID).
		Str("connection_id", conn.ID()).
		Msg("WebSocket connection registered")
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(conn ConnectionInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientID := conn.ClientID()
	conns, ok := h.clients[clientID]
	if !ok {
		return
	}
	if _, exists := conns[conn.ID()]; !exists {
		return
	}

	delete(conns, conn.ID())
	if len(conns) == 0 {
		delete(h.clients, clientID)
	}

	log.Debug().
		Int32("client_id", clientID).
		Str("connection_id", conn.ID()).
		Msg("WebSocket connection unregistered")
}

// Broadcast sends an event to every connection of a client
func (h *Hub) Broadcast(clientID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("client_id", clientID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	conns, ok := h.clients[clientID]
	if !ok || len(conns) == 0 {
		h.mu.RUnlock()
		return
	}

	// copy so the lock is not held while sending
	targets := make([]ConnectionInterface, 0, len(conns))
	for _, c := range conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		go func(c ConnectionInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("client_id", clientID).
					Str("connection_id", c.ID()).
					Msg("Failed to send to connection")
			}
		}(conn)
	}

	log.Debug().
		Int32("client_id", clientID).
		Str("event_type", event.Type).
		Int("connection_count", len(targets)).
		Msg("Broadcast event")
}

// ConnectionCount returns the number of connections watching a client
func (h *Hub) ConnectionCount(clientID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clientID])
}

// TotalConnectionCount returns the number of open connections
func (h *Hub) TotalConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
