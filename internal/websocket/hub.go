// Package websocket pushes sync results and job updates to connected
// dashboard clients.
package websocket

import (
	"log"
	"sync"
)

// sendBuffer is the per-client outbound queue. A client that falls this far
// behind is disconnected rather than allowed to stall the hub.
const sendBuffer = 256

// Hub owns the set of connected clients. All membership changes go through
// the Run loop; the mutex only guards reads from other goroutines.
type Hub struct {
	clients map[*Client]struct{}

	broadcast chan []byte
	join      chan *Client
	leave     chan *Client

	mu sync.RWMutex
}

// NewHub creates an empty hub. Call Run in a goroutine before registering
// clients.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan []byte, sendBuffer),
		join:      make(chan *Client),
		leave:     make(chan *Client),
	}
}

// Run is the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.join:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected (total: %d)", count)

		case client := <-h.leave:
			h.drop(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var stalled []*Client
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				h.drop(client)
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	log.Printf("WebSocket client disconnected (total: %d)", len(h.clients))
}

// Broadcast queues a message for every connected client. Messages are
// dropped when the hub itself is backed up; sync events are advisory and
// the REST API remains the source of truth.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		log.Println("Broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.join <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.leave <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one WebSocket connection's queue.
type Client struct {
	hub  *Hub
	send chan []byte
}

// NewClient creates a client bound to a hub.
func NewClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBuffer),
	}
}

// Send returns the client's outbound channel. Closed by the hub when the
// client is dropped.
func (c *Client) Send() chan []byte {
	return c.send
}
