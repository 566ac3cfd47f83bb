// Package viewer relays published turn and prep events to browsers over
// WebSocket for live inspection during local development.
package viewer

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is one relayed message. Payload is the event JSON as published.
type Event struct {
	Topic     string          `json:"topic"`
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
}

// Hub fans events out to every connected WebSocket client.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 100),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Info().Int("clients", n).Msg("Viewer client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Info().Int("clients", n).Msg("Viewer client disconnected")

		case event := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Warn().Err(err).Msg("Viewer write failed")
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for broadcast. It drops the event if the queue
// is full so a slow browser cannot stall the consumer.
func (h *Hub) Publish(e Event) bool {
	select {
	case h.broadcast <- e:
		return true
	default:
		log.Warn().Str("eventType", e.EventType).Msg("Viewer queue full, dropping event")
		return false
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Stop() {
	close(h.done)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dev tool
	},
}

// Handler upgrades the request and registers the connection with the hub.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("WebSocket upgrade failed")
			return
		}
		select {
		case h.register <- conn:
		case <-h.done:
			conn.Close()
			return
		}

		go func() {
			defer func() {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
