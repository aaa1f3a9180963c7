package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/clasifica/clasifica-backend/internal/domain"
)

// EventType is the change a workspace went through
type EventType string

const (
	EventTypeCreated        EventType = "created"
	EventTypeUpdated        EventType = "updated"
	EventTypeTrained        EventType = "trained"
	EventTypeMetricsUpdated EventType = "metrics_updated"
)

// EntityType is the kind of entity an event is about
type EntityType string

const (
	EntityTypeWorkspace EntityType = "workspace"
)

// Event reports the state of one workspace after a change.
// A later event for the same workspace supersedes every earlier one.
type Event struct {
	Type        string                  `json:"type"` // e.g. "workspace.trained"
	Entity      EntityType              `json:"entity"`
	WorkspaceID string                  `json:"workspaceId"`
	Payload     domain.WorkspaceSummary `json:"payload"`
	Timestamp   time.Time               `json:"timestamp"`
	// Replayed marks events sent from the hub's cache when a client connects
	Replayed bool `json:"replayed,omitempty"`
}

// NewEvent creates a workspace event stamped with the current time
func NewEvent(eventType EventType, summary domain.WorkspaceSummary) Event {
	return Event{
		Type:        fmt.Sprintf("%s.%s", EntityTypeWorkspace, eventType),
		Entity:      EntityTypeWorkspace,
		WorkspaceID: summary.ID,
		Payload:     summary,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WorkspaceCreated creates a workspace.created event
func WorkspaceCreated(summary domain.WorkspaceSummary) Event {
	return NewEvent(EventTypeCreated, summary)
}

// WorkspaceUpdated creates a workspace.updated event
func WorkspaceUpdated(summary domain.WorkspaceSummary) Event {
	return NewEvent(EventTypeUpdated, summary)
}

// WorkspaceTrained creates a workspace.trained event
func WorkspaceTrained(summary domain.WorkspaceSummary) Event {
	return NewEvent(EventTypeTrained, summary)
}

// WorkspaceMetricsUpdated creates a workspace.metrics_updated event
func WorkspaceMetricsUpdated(summary domain.WorkspaceSummary) Event {
	return NewEvent(EventTypeMetricsUpdated, summary)
}
