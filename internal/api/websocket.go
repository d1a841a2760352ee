package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"keyoverlay/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server only listens on loopback and browser sources in streaming
	// software send arbitrary origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager handles WebSocket connections and broadcasting. Only the hub
// goroutine touches the client set.
type WSManager struct {
	server     *Server
	log        zerolog.Logger
	clients    map[*WebSocketClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan []byte
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	done       chan struct{}
}

// WebSocketClient represents a connected overlay or control page
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	ip      string
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		log:        s.log.With().Str("component", "ws").Logger(),
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		done:       make(chan struct{}),
	}
}

// start runs the hub until ctx is done. Key updates are read from the
// notifier when the hub processes them, so a client registered between two
// updates never receives an older list after a newer one.
func (m *WSManager) start(ctx context.Context) {
	sub := m.server.state.Notifier.Subscribe()
	defer sub.Close()
	defer close(m.done)

	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.clientsMu.Unlock()
			m.log.Debug().Str("remote", client.ip).Int("clients", total).Msg("Client registered")
			m.sendTo(client, m.keysMessage(sub.Latest()))

		case client := <-m.unregister:
			m.drop(client)

		case <-sub.C():
			m.broadcastMessage(m.keysMessage(sub.Latest()))

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-ctx.Done():
			m.clientsMu.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
			}
			m.clientsMu.Unlock()
			return
		}
	}
}

func (m *WSManager) keysMessage(keys []string) []byte {
	data, err := json.Marshal(protocol.NewKeysMessage(keys))
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to marshal keys message")
		return nil
	}
	return data
}

func (m *WSManager) drop(client *WebSocketClient) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	if _, ok := m.clients[client]; ok {
		delete(m.clients, client)
		close(client.send)
		m.log.Debug().Str("remote", client.ip).Int("clients", len(m.clients)).Msg("Client unregistered")
	}
}

// sendTo queues message for one client, dropping the client if its buffer
// is full.
func (m *WSManager) sendTo(client *WebSocketClient, message []byte) {
	if message == nil {
		return
	}
	select {
	case client.send <- message:
	default:
		m.log.Warn().Str("remote", client.ip).Msg("Client too slow, disconnecting")
		m.drop(client)
	}
}

func (m *WSManager) broadcastMessage(message []byte) {
	m.clientsMu.RLock()
	clients := make([]*WebSocketClient, 0, len(m.clients))
	for client := range m.clients {
		clients = append(clients, client)
	}
	m.clientsMu.RUnlock()

	for _, client := range clients {
		m.sendTo(client, message)
	}
}

// Broadcast queues v, JSON-encoded, for every client. It never blocks; if
// the hub is behind, the message is dropped.
func (m *WSManager) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to marshal broadcast message")
		return
	}
	select {
	case m.broadcast <- data:
	case <-m.done:
	default:
		m.log.Warn().Msg("Broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (m *WSManager) ClientCount() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		ip:      r.RemoteAddr,
	}

	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub.
func (c *WebSocketClient) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.Debug().Err(err).Msg("Read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (c *WebSocketClient) handleMessage(data []byte) {
	var msg protocol.Envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		c.manager.log.Debug().Err(err).Msg("Invalid message format")
		return
	}

	switch msg.Type {
	case protocol.TypeReset:
		c.manager.log.Debug().Str("remote", c.ip).Msg("Reset requested")
		c.manager.server.state.ResetKeys()
	case protocol.TypePing:
	default:
		c.manager.log.Debug().Str("type", string(msg.Type)).Msg("Ignoring message")
	}
}
