package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"mseat/internal/controller"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to loopback only; any local origin is fine.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// statusMessage is the one frame type the stream carries.
type statusMessage struct {
	Type   string            `json:"type"`
	Status controller.Status `json:"status"`
}

// WSManager handles WebSocket connections and status broadcasting.
type WSManager struct {
	server     *Server
	clients    map[*WebSocketClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan statusMessage
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	shutdown   chan struct{}
}

// WebSocketClient represents one connected UI.
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	id      string
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan statusMessage),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		shutdown:   make(chan struct{}),
	}
}

func (m *WSManager) start() {
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			m.clientsMu.Unlock()
			logrus.WithField("client", client.id).Debug("status stream client connected")

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
				logrus.WithField("client", client.id).Debug("status stream client gone")
			}
			m.clientsMu.Unlock()

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-m.shutdown:
			return
		}
	}
}

func (m *WSManager) broadcastMessage(message statusMessage) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Debug("status frame encoding failed")
		return
	}

	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	for client := range m.clients {
		select {
		case client.send <- jsonMsg:
		default:
			close(client.send)
			delete(m.clients, client)
		}
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Debug("websocket upgrade failed")
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 64),
		id:      uuid.NewString(),
	}

	m.register <- client

	go client.writePump()
	go client.readPump()

	// Greet with the current state so the UI needs no extra request.
	m.BroadcastStatus(m.server.router.Status())
}

// readPump drains the connection; the stream is one-way, inbound
// frames are discarded but keep the connection's deadline fresh.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("status stream read error")
			}
			break
		}
	}
}

// writePump pushes broadcast frames and keepalive pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastStatus pushes a status snapshot to every connected client.
func (m *WSManager) BroadcastStatus(status controller.Status) {
	msg := statusMessage{Type: "status", Status: status}
	select {
	case m.broadcast <- msg:
	case <-m.shutdown:
	}
}
