// Package broadcaster pushes dashboard snapshots to WebSocket clients.
package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alpenlabs/strata-dashboards/internal/utils"
)

// Config holds broadcaster limits.
type Config struct {
	MaxClients int // maximum concurrent clients (default: 1000)
	BufferSize int // send buffer per client (default: 64)
}

// DefaultConfig returns the default broadcaster configuration.
func DefaultConfig() Config {
	return Config{
		MaxClients: 1000,
		BufferSize: 64,
	}
}

// Client represents one WebSocket connection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// SnapshotFunc returns the current payloads per message type, sent to a
// client right after it connects.
type SnapshotFunc func() map[string]interface{}

type outbound struct {
	msgType string
	data    interface{}
}

// Broadcaster manages WebSocket clients and fans out snapshot updates.
type Broadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	updates    chan outbound
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	config     Config
	snapshots  SnapshotFunc
}

// NewBroadcaster creates a broadcaster. snapshots may be nil if new
// clients should not receive an initial state dump.
func NewBroadcaster(config Config, snapshots SnapshotFunc) *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		updates:    make(chan outbound, 16),
		config:     config,
		snapshots:  snapshots,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin
			},
		},
	}
}

// Start runs the registration and fan-out loop until ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return

		case client := <-b.register:
			b.handleClientRegistration(client)

		case client := <-b.unregister:
			b.handleClientUnregistration(client)

		case msg := <-b.updates:
			b.fanOut(msg.msgType, msg.data)
		}
	}
}

// Broadcast queues a typed payload for delivery to all clients. Drops the
// update if the queue is full rather than blocking the caller.
func (b *Broadcaster) Broadcast(msgType string, data interface{}) {
	select {
	case b.updates <- outbound{msgType: msgType, data: data}:
	default:
		utils.LogWarn("BROADCASTER", "Update queue full, dropping %s message", msgType)
	}
}

func (b *Broadcaster) handleClientRegistration(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.clients) >= b.config.MaxClients {
		close(client.send)
		return
	}

	b.clients[client] = true
	go client.writePump()

	utils.LogDebug("BROADCASTER", "Client %s connected (%d total)", client.id, len(b.clients))

	if b.snapshots == nil {
		return
	}

	// Bring the new client up to date before any live updates arrive.
	for msgType, payload := range b.snapshots() {
		data, err := encodeMessage(msgType, payload)
		if err != nil {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(b.clients, client)
			return
		}
	}
}

func (b *Broadcaster) handleClientUnregistration(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client.send)
		utils.LogDebug("BROADCASTER", "Client %s disconnected (%d total)", client.id, len(b.clients))
	}
}

// fanOut encodes the message once and sends the same bytes to every client.
func (b *Broadcaster) fanOut(msgType string, payload interface{}) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		utils.LogError("BROADCASTER", "Failed to encode %s message: %v", msgType, err)
		return
	}

	b.mu.RLock()
	clients := make([]*Client, 0, len(b.clients))
	for client := range b.clients {
		clients = append(clients, client)
	}
	b.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full
			go func(c *Client) { b.unregister <- c }(client)
		}
	}
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		delete(b.clients, client)
		close(client.send)
	}
}

func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": payload,
	})
}

// UpgradeConnection upgrades an HTTP request to a WebSocket client.
func (b *Broadcaster) UpgradeConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		id:   generateClientID(),
		conn: conn,
		send: make(chan []byte, b.config.BufferSize),
	}

	b.register <- client

	go client.readPump(b.unregister)
}

// GetClientCount returns the current number of connected clients.
func (b *Broadcaster) GetClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
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

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump(unregister chan<- *Client) {
	defer func() {
		unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// generateClientID generates a unique client ID
func generateClientID() string {
	return fmt.Sprintf("client_%d", time.Now().UnixNano())
}
