package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	clientSendSize = 64
)

// ProgressEvent is pushed to subscribed clients while a long simulation
// runs.
type ProgressEvent struct {
	Type      string    `json:"type"`
	TeamID    string    `json:"team_id"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressClient owns one subscriber connection. Every frame reaches the
// connection through the send channel and WritePump, so the connection
// never has more than one writer.
type ProgressClient struct {
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
}

func NewProgressClient(hub *WebSocketHub, conn *websocket.Conn) *ProgressClient {
	return &ProgressClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}
}

// EnqueueJSON queues a one-off message for the client's writer. The
// message is dropped when the client's buffer is full.
func (c *ProgressClient) EnqueueJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
	default:
	}
	return nil
}

// ReadPump drains inbound frames so pings and close messages are
// processed. Unregisters the client on the first read error.
func (c *ProgressClient) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// WritePump is the connection's single writer. It exits when the hub
// closes the send channel or a write fails.
func (c *ProgressClient) WritePump() {
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

// WebSocketHub fans simulation progress out to connected clients.
type WebSocketHub struct {
	mu         sync.RWMutex
	clients    map[*ProgressClient]bool
	broadcast  chan ProgressEvent
	register   chan *ProgressClient
	unregister chan *ProgressClient
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*ProgressClient]bool),
		broadcast:  make(chan ProgressEvent, 256),
		register:   make(chan *ProgressClient),
		unregister: make(chan *ProgressClient),
	}
}

// Run processes hub events. Intended to run in its own goroutine for the
// process lifetime.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				logrus.Errorf("Failed to marshal progress event: %v", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Buffer full; the client has stopped draining.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client to the hub.
func (h *WebSocketHub) Register(client *ProgressClient) {
	h.register <- client
}

// Unregister removes a client and closes its send channel.
func (h *WebSocketHub) Unregister(client *ProgressClient) {
	h.unregister <- client
}

// BroadcastProgress publishes a simulation progress event. Never blocks:
// if the buffer is full the event is dropped.
func (h *WebSocketHub) BroadcastProgress(teamID string, completed, total int) {
	event := ProgressEvent{
		Type:      "simulation_progress",
		TeamID:    teamID,
		Completed: completed,
		Total:     total,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.broadcast <- event:
	default:
	}
}
