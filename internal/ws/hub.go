package ws

import (
	"sync"

	"go.uber.org/zap"
)

// Hub keeps the set of live connections keyed by connection id. It is the
// addressing substrate for every relay: services resolve a connection id (via
// room membership or the presence registry) and hand the envelope here.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*clientConn
}

func NewHub() *Hub { return &Hub{conns: make(map[string]*clientConn)} }

func (h *Hub) add(c *clientConn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) remove(connID string) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	delete(h.conns, connID)
	h.mu.Unlock()
	if ok {
		c.rawConn.Close()
	}
}

// Send delivers one envelope to one connection. An unknown destination is a
// silent drop; callers tolerate loss.
func (h *Hub) Send(connID string, event string, body any) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := c.writeEnvelope(event, body); err != nil {
		zap.L().Debug("ws.send_failed",
			zap.String("conn_id", connID), zap.String("event", event), zap.Error(err))
		return false
	}
	return true
}

// Broadcast delivers one envelope to every live connection.
func (h *Hub) Broadcast(event string, body any) {
	// Take a quick snapshot of the current connections
	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	// Do the I/O outside the lock
	for _, c := range conns {
		if err := c.writeEnvelope(event, body); err != nil {
			zap.L().Debug("ws.broadcast_failed",
				zap.String("conn_id", c.id), zap.String("event", event), zap.Error(err))
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
