package events

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	clientSend = 16
)

// Hub pushes events to connected admin dashboards over websockets. Each
// client has its own queue and writer, so Publish never waits on a socket.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeWS upgrades the request and keeps the connection registered until the
// client goes away. Incoming messages are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	cl := &hubClient{conn: conn, send: make(chan []byte, clientSend)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go cl.writeLoop()
	defer h.drop(cl)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (cl *hubClient) writeLoop() {
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[EVENTS] [WARN] websocket write failed: %v", err)
			cl.conn.Close()
			return
		}
	}
}

// remove unregisters cl. Callers hold h.mu.
func (h *Hub) remove(cl *hubClient) bool {
	if _, ok := h.clients[cl]; !ok {
		return false
	}
	delete(h.clients, cl)
	close(cl.send)
	return true
}

func (h *Hub) drop(cl *hubClient) {
	h.mu.Lock()
	h.remove(cl)
	h.mu.Unlock()
	cl.conn.Close()
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues e for every client. A client whose queue is full is
// disconnected.
func (h *Hub) Publish(_ context.Context, e Envelope) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("[EVENTS] [ERROR] encode %s: %v", e.EventType, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			log.Printf("[EVENTS] [WARN] dropping slow websocket client")
			h.remove(cl)
			cl.conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.remove(cl)
		_ = cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		cl.conn.Close()
	}
}
