package notify

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"quickfolio-backend/internal/domain"
	"quickfolio-backend/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 32
)

type client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	done      chan struct{}
	closed    int32
}

func (c *client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
		c.conn.Close()
	}
}

func (c *client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// Hub pushes wizard notices to browsers subscribed to a session.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*client]struct{})}
}

type message struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id"`
	Notice    domain.Notice `json:"notice"`
	Timestamp string        `json:"timestamp"`
}

// For returns a notifier that broadcasts to one session's subscribers.
func (h *Hub) For(sessionID string) domain.Notifier {
	return domain.NotifierFunc(func(_ context.Context, n domain.Notice) {
		h.Broadcast(sessionID, n)
	})
}

// Broadcast never blocks: a subscriber with a full queue is dropped.
func (h *Hub) Broadcast(sessionID string, n domain.Notice) {
	payload, err := json.Marshal(message{
		Type:      "notice",
		SessionID: sessionID,
		Notice:    n,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Log.Error("failed to encode notice", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		if !c.isClosed() {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			logger.Log.Warn("notice queue full, dropping subscriber", "session_id", sessionID)
			h.unregister(c)
		}
	}
}

// Count returns the number of live subscribers for a session.
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Serve registers an upgraded connection and pumps messages until the peer
// goes away. It blocks.
func (h *Hub) Serve(conn *websocket.Conn, sessionID string) {
	c := &client{conn: conn, sessionID: sessionID, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[c.sessionID] == nil {
		h.sessions[c.sessionID] = make(map[*client]struct{})
	}
	h.sessions[c.sessionID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if subs, ok := h.sessions[c.sessionID]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.sessions, c.sessionID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// readPump only exists to process control frames and notice the peer
// closing; clients do not send anything meaningful.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("websocket read error", "session_id", c.sessionID, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(c)
	}()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*client, 0)
	for _, subs := range h.sessions {
		for c := range subs {
			all = append(all, c)
		}
	}
	h.sessions = make(map[string]map[*client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.close()
	}
}
