// WebSocket stream. The Hub owns the client set in a single goroutine;
// each client gets its own write pump so a slow reader cannot stall the
// broadcast.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Message is the envelope for every stream frame.
type Message struct {
	Type    string `json:"type"` // "snapshot", "event"
	Tick    uint64 `json:"tick"`
	Payload any    `json:"payload"`
}

// client is one WebSocket connection.
type client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	compressed bool // Binary LZ4 frames instead of JSON text
}

// frame is one encoded broadcast. Run compresses it at most once, and only
// when a compressed client is connected.
type frame struct {
	text []byte
}

// Hub maintains the set of stream clients and fans frames out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan frame
	register   chan *client
	unregister chan *client
	count      chan chan int
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan frame, 4),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			slog.Debug("stream client registered", "compressed", c.compressed, "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case f := <-h.broadcast:
			var packed []byte
			for c := range h.clients {
				msg := f.text
				if c.compressed {
					if packed == nil {
						var err error
						if packed, err = compressLZ4(f.text); err != nil {
							slog.Error("stream compression failed", "error", err)
							continue
						}
					}
					msg = packed
				}
				select {
				case c.send <- msg:
				default:
					// Send buffer full; treat the client as gone.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Publish encodes msg once and queues it for every client. It drops the
// frame instead of blocking the caller when the hub is backed up.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("stream encode failed", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- frame{text: data}:
	default:
		slog.Debug("stream frame dropped", "type", msg.Type, "tick", msg.Tick)
	}
}

// Clients returns the number of connected clients, 0 once the hub stopped.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream upgrades to a WebSocket. ?compress=lz4 selects binary LZ4
// frames.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:        s.Hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		compressed: r.URL.Query().Get("compress") == "lz4",
	}
	select {
	case s.Hub.register <- c:
	case <-s.Hub.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound messages and detects disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("stream client read error", "error", err)
			}
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	kind := websocket.TextMessage
	if c.compressed {
		kind = websocket.BinaryMessage
	}
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(kind, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
