package websocket

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultEventRetention is how long the hub remembers the last event of a workspace
const DefaultEventRetention = 10 * time.Minute

var (
	// ErrClientClosed is returned when attempting to send to a closed client
	ErrClientClosed = errors.New("client is closed")
	// ErrClientBacklog is returned when a client has too many workspaces waiting to be written
	ErrClientBacklog = errors.New("client backlog full")
)

// Subscriber is a connection receiving workspace events of one owner
type Subscriber interface {
	ID() string
	OwnerID() domain.OwnerID
	// Wants reports whether events about workspaceID should be delivered
	Wants(workspaceID string) bool
	// Send queues data as the latest state of workspaceID without blocking
	Send(workspaceID string, data []byte) error
	Close() error
}

// Hub fans workspace events out to the owner's subscribers and keeps the latest
// event of every workspace for a retention window, so a client that connects after a
// change still learns the current state. It is safe for concurrent use.
type Hub struct {
	owners    map[domain.OwnerID]map[string]Subscriber
	latest    map[domain.OwnerID]map[string]Event
	retention time.Duration
	now       func() time.Time
	mu        sync.Mutex
}

// NewHub creates a hub with DefaultEventRetention
func NewHub() *Hub {
	return NewHubWithRetention(DefaultEventRetention)
}

// NewHubWithRetention creates a hub remembering events for retention. Zero disables replay.
func NewHubWithRetention(retention time.Duration) *Hub {
	return &Hub{
		owners:    make(map[domain.OwnerID]map[string]Subscriber),
		latest:    make(map[domain.OwnerID]map[string]Event),
		retention: retention,
		now:       time.Now,
	}
}

// Register adds a subscriber and replays the retained events it wants, oldest first.
// Replay is queued under the hub lock so a concurrent broadcast cannot be overtaken by
// an older retained event.
func (h *Hub) Register(sub Subscriber) {
	ownerID := sub.OwnerID()

	h.mu.Lock()
	if h.owners[ownerID] == nil {
		h.owners[ownerID] = make(map[string]Subscriber)
	}
	h.owners[ownerID][sub.ID()] = sub
	h.pruneLocked()

	replay := make([]Event, 0, len(h.latest[ownerID]))
	for workspaceID, event := range h.latest[ownerID] {
		if sub.Wants(workspaceID) {
			replay = append(replay, event)
		}
	}
	slices.SortFunc(replay, func(a, b Event) int { return a.Timestamp.Compare(b.Timestamp) })

	var err error
	for _, event := range replay {
		event.Replayed = true
		if err = send(sub, event); err != nil {
			break
		}
	}
	h.mu.Unlock()

	if err != nil {
		h.drop(sub, err)
		return
	}

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("client_id", sub.ID()).
		Int("replayed", len(replay)).
		Msg("WebSocket client registered")
}

// Unregister removes a subscriber from the hub
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ownerID := sub.OwnerID()
	subs, ok := h.owners[ownerID]
	if !ok {
		return
	}
	if _, exists := subs[sub.ID()]; !exists {
		return
	}
	delete(subs, sub.ID())
	if len(subs) == 0 {
		delete(h.owners, ownerID)
	}

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("client_id", sub.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast records event as the latest state of its workspace and queues it for every
// subscriber of the owner that wants it. Sends never block, so they happen under the hub
// lock and every subscriber sees one order of events. Subscribers that cannot keep up
// are dropped.
func (h *Hub) Broadcast(ownerID domain.OwnerID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("owner_id", ownerID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.Lock()
	h.pruneLocked()
	if h.retention > 0 {
		if h.latest[ownerID] == nil {
			h.latest[ownerID] = make(map[string]Event)
		}
		h.latest[ownerID][event.WorkspaceID] = event
	}
	delivered := 0
	var failed []failedSend
	for _, sub := range h.owners[ownerID] {
		if !sub.Wants(event.WorkspaceID) {
			continue
		}
		if err := sub.Send(event.WorkspaceID, data); err != nil {
			failed = append(failed, failedSend{sub: sub, err: err})
			continue
		}
		delivered++
	}
	h.mu.Unlock()

	for _, f := range failed {
		h.drop(f.sub, f.err)
	}

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("workspace_id", event.WorkspaceID).
		Str("event_type", event.Type).
		Int("client_count", delivered).
		Msg("Broadcast event")
}

// TotalClientCount returns the number of connected subscribers across all owners
func (h *Hub) TotalClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for _, subs := range h.owners {
		total += len(subs)
	}
	return total
}

type failedSend struct {
	sub Subscriber
	err error
}

func send(sub Subscriber, event Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return err
	}
	return sub.Send(event.WorkspaceID, data)
}

// drop disconnects a subscriber that could not take an event
func (h *Hub) drop(sub Subscriber, err error) {
	log.Warn().
		Err(err).
		Str("owner_id", sub.OwnerID().String()).
		Str("client_id", sub.ID()).
		Msg("Dropping WebSocket client")
	h.Unregister(sub)
	sub.Close()
}

// pruneLocked forgets events older than the retention window
func (h *Hub) pruneLocked() {
	cutoff := h.now().Add(-h.retention)
	for ownerID, events := range h.latest {
		for workspaceID, event := range events {
			if event.Timestamp.Before(cutoff) {
				delete(events, workspaceID)
			}
		}
		if len(events) == 0 {
			delete(h.latest, ownerID)
		}
	}
}
