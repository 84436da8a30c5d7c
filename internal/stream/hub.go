package stream

import (
	"log"
	"net/http"
	"sync"

	"zibana-backend/internal/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced by the HTTP middleware in front of the router
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes new audit entries to connected admin consoles so the override
// panel updates without polling. Delivery is best-effort: a slow or closed
// client is dropped, never blocks a transition.
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan *models.AuditLogEntry
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan *models.AuditLogEntry, 256),
	}
	go h.run()
	return h
}

// Broadcast queues an entry for delivery. Non-blocking: if the buffer is
// full the entry is dropped for streaming (it is already durable in the
// audit log).
func (h *Hub) Broadcast(entry *models.AuditLogEntry) {
	select {
	case h.broadcast <- entry:
	default:
		log.Printf("[AuditStream] broadcast buffer full, dropping entry %s", entry.ID)
	}
}

func (h *Hub) run() {
	for entry := range h.broadcast {
		h.clientsMux.Lock()
		for conn := range h.clients {
			if err := conn.WriteJSON(entry); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.clientsMux.Unlock()
	}
}

// HandleWS upgrades the request and registers the client until it
// disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[AuditStream] upgrade failed: %v", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	// Read loop exists only to detect disconnects
	go func() {
		defer func() {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount returns the number of connected consoles
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}
