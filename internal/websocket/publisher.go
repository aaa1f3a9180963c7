package websocket

import "github.com/clasifica/clasifica-backend/internal/domain"

// EventPublisher publishes workspace events to an owner's live connections
type EventPublisher interface {
	Publish(ownerID domain.OwnerID, event Event)
}

var (
	_ EventPublisher = (*Hub)(nil)
	_ EventPublisher = NoOpPublisher{}
)

// Publish implements EventPublisher by broadcasting the event to the owner's clients
func (h *Hub) Publish(ownerID domain.OwnerID, event Event) {
	h.Broadcast(ownerID, event)
}

// NoOpPublisher discards events; used when the live feed is disabled
type NoOpPublisher struct{}

// Publish does nothing
func (NoOpPublisher) Publish(domain.OwnerID, Event) {}
