package service

import "github.com/dafibh/fluxo/fluxo-backend/internal/websocket"

// eventPublishing is embedded by services that push real-time updates
type eventPublishing struct {
	eventPublisher websocket.EventPublisher
}

// SetEventPublisher sets the event publisher for real-time updates
func (e *eventPublishing) SetEventPublisher(publisher websocket.EventPublisher) {
	e.eventPublisher = publisher
}

func (e *eventPublishing) publishEvent(clientID int32, event websocket.Event) {
	if e.eventPublisher != nil {
		e.eventPublisher.Publish(clientID, event)
	}
}
