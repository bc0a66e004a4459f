package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/notewire/notewire/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// page sessions connect from the chat origin, not ours
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pushMessage is what the hub sends to every connected page session.
type pushMessage struct {
	Action string `json:"action"`
}

// Hub tracks connected page sessions ("tabs") and fans action messages
// out to all of them. It satisfies the background notifier contract.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log.WithComponent("tabs"),
	}
}

// Broadcast sends the action to every connected tab. Connections that
// fail to take the write are dropped.
func (h *Hub) Broadcast(action string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := pushMessage{Action: action}
	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Warn("tab write failed, dropping connection", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Count returns the number of connected tabs.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Serve upgrades the request and keeps the connection registered until
// the peer goes away. Inbound frames are read and discarded; the channel
// is push-only.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("tab upgrade failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.log.Debug("tab connected", map[string]interface{}{"tabs": total})

	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every tab.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
