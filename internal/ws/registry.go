// Package ws holds the per-process registry of live user connections.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Conn is a registered websocket connection with serialized writes.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// WriteJSON writes a JSON message to the connection.
func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// Registry tracks live connections per user. One instance per process,
// injected where needed; it holds no other state.
type Registry struct {
	mu    sync.RWMutex
	conns map[string][]*Conn
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string][]*Conn)}
}

// Add registers a websocket connection for a user and returns the
// wrapped connection to pass back to Remove when the session ends.
func (r *Registry) Add(userID string, ws *websocket.Conn) *Conn {
	conn := &Conn{ws: ws}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = append(r.conns[userID], conn)
	return conn
}

// Remove unregisters a connection for a user.
func (r *Registry) Remove(userID string, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := r.conns[userID][:0]
	for _, c := range r.conns[userID] {
		if c != conn {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(r.conns, userID)
	} else {
		r.conns[userID] = remaining
	}
}

// ActiveConnections returns the number of live connections for a user.
func (r *Registry) ActiveConnections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}

// Send writes the payload to every live connection for the user.
// Returns true if at least one connection accepted the write, which is
// the fanout's definition of live delivery.
func (r *Registry) Send(userID string, payload any) bool {
	r.mu.RLock()
	conns := make([]*Conn, len(r.conns[userID]))
	copy(conns, r.conns[userID])
	r.mu.RUnlock()

	delivered := false
	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err == nil {
			delivered = true
		}
	}
	return delivered
}
