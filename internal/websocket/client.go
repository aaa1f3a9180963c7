package websocket

import (
	"sync"
	"time"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound frames; the feed is server-push only
	maxMessageSize = 512

	// maxPendingWorkspaces caps how many distinct workspaces may wait to be written
	maxPendingWorkspaces = 256
)

// Client is one WebSocket connection following an owner's workspaces, or a single one
// of them. Queued events are keyed by workspace: a newer event replaces an unwritten
// older one, so a slow reader only ever receives the latest state of each workspace.
type Client struct {
	id          string
	ownerID     domain.OwnerID
	workspaceID string
	conn        *websocket.Conn
	hub         *Hub

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool

	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client for ownerID. A zero workspace subscribes to all of the
// owner's workspaces.
func NewClient(conn *websocket.Conn, ownerID domain.OwnerID, workspace domain.WorkspaceID, hub *Hub) *Client {
	c := &Client{
		id:      uuid.New().String(),
		ownerID: ownerID,
		conn:    conn,
		hub:     hub,
		pending: make(map[string][]byte),
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if workspace != domain.WorkspaceID(uuid.Nil) {
		c.workspaceID = workspace.String()
	}
	return c
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// OwnerID returns the owner the client is subscribed for
func (c *Client) OwnerID() domain.OwnerID {
	return c.ownerID
}

// Wants reports whether the client follows workspaceID
func (c *Client) Wants(workspaceID string) bool {
	return c.workspaceID == "" || c.workspaceID == workspaceID
}

// Send queues data as the latest state of workspaceID. It never blocks.
func (c *Client) Send(workspaceID string, data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if _, queued := c.pending[workspaceID]; !queued {
		if len(c.order) >= maxPendingWorkspaces {
			c.mu.Unlock()
			return ErrClientBacklog
		}
		c.order = append(c.order, workspaceID)
	}
	c.pending[workspaceID] = data
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return nil
}

// drain takes every queued message in first-queued order
func (c *Client) drain() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([][]byte, 0, len(c.order))
	for _, workspaceID := range c.order {
		messages = append(messages, c.pending[workspaceID])
	}
	c.order = c.order[:0]
	clear(c.pending)
	return messages
}

// Close closes the client connection. Safe to call more than once.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)

		if c.conn != nil {
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}

// ReadPump reads until the peer goes away, then unregisters the client.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("owner_id", c.ownerID.String()).
					Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

// WritePump writes queued events and keepalive pings. Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ready:
			for _, message := range c.drain() {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Warn().
						Err(err).
						Str("client_id", c.id).
						Str("owner_id", c.ownerID.String()).
						Msg("WebSocket write error")
					return
				}
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
