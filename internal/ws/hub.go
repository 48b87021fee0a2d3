// Package ws pushes alerts and activity events to dashboard clients over
// WebSockets. Traffic is one-way: clients only listen.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is the wire format for dashboard pushes.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// Hub tracks dashboard subscriber connections.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHub builds the subscriber hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS upgrades a dashboard connection and starts its pumps.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, h.logger, h.remove)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.start()
	h.logger.Info("dashboard subscriber connected")
}

// Publish fans an event out to all subscribers. Slow clients are dropped
// rather than blocking the caller.
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now()})
	if err != nil {
		h.logger.Warn("failed to encode event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.send(data)
	}
}

// Run blocks until ctx is done, then closes all subscriber connections.
// Each client keeps itself alive with its own ping ticker.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
