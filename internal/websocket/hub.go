// Package websocket implements the discovery session progress push
// server: operator clients subscribe over a
// WebSocket connection and receive {sessionId, currentModule, progress}
// frames as the Discovery Orchestrator advances through modules, instead
// of only polling GetSession. This is the teacher's
// internal/websocket/client.go ping/reconnect shape inverted: the
// teacher dialed out to a central RMM server as a client; here Y
// Monitor itself is the server pushing frames to whichever operator
// clients are currently connected.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ymonitor/ymonitor/internal/logging"
)

var log = logging.L("websocket")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 64
)

// ProgressFrame is the payload pushed to subscribers on every discovery
// session advancement.
type ProgressFrame struct {
	SessionID     string `json:"sessionId"`
	DeviceID      string `json:"deviceId"`
	CurrentModule string `json:"currentModule,omitempty"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Operator UI may be served from a different origin than the core
	// process; the operational surface's auth layer is responsible for
	// access control here, not origin checks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber is one connected operator client.
type subscriber struct {
	conn *websocket.Conn
	send chan ProgressFrame
	done chan struct{}
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Hub fans discovery session progress out to any number of connected
// operator clients. Zero value is usable only via NewHub.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub creates an empty progress hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// connection as a progress subscriber until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade failed", "error", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan ProgressFrame, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go h.writePump(sub)
	h.readPump(sub)
}

// Push broadcasts a progress frame to every connected subscriber.
// Non-blocking per subscriber: a slow/stalled client drops the frame
// rather than stalling the orchestrator's module loop.
func (h *Hub) Push(frame ProgressFrame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.send <- frame:
		default:
			log.Warn("progress subscriber send buffer full, dropping frame", "sessionId", frame.SessionID)
		}
	}
}

// Subscribers reports the current connected-client count (observability).
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.close()
}

func (h *Hub) readPump(sub *subscriber) {
	defer h.remove(sub)

	sub.conn.SetReadLimit(maxMessageSize)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Subscribers are read-only consumers; any inbound message (or
		// the connection closing) just ends the pump.
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer h.remove(sub)

	for {
		select {
		case <-sub.done:
			return

		case frame := <-sub.send:
			data, err := json.Marshal(frame)
			if err != nil {
				log.Error("marshal progress frame", "error", err)
				continue
			}
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
