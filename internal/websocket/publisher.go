package websocket

// EventPublisher defines the interface for publishing events to WebSocket connections
type EventPublisher interface {
	// Publish sends an event to every connection watching the given client
	Publish(clientID int32, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the client's connections
func (h *Hub) Publish(clientID int32, event Event) {
	h.Broadcast(clientID, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(clientID int32, event Event) {}
