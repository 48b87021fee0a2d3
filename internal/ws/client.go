package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	readDeadline = 90 * time.Second
	pingInterval = 30 * time.Second
)

// client wraps one subscriber connection with a buffered outbound queue.
type client struct {
	ws      *websocket.Conn
	out     chan []byte
	done    chan struct{}
	logger  *zap.Logger
	onClose func(*client)
	once    sync.Once
}

func newClient(ws *websocket.Conn, logger *zap.Logger, onClose func(*client)) *client {
	return &client{
		ws:      ws,
		out:     make(chan []byte, 16),
		done:    make(chan struct{}),
		logger:  logger,
		onClose: onClose,
	}
}

func (c *client) start() {
	go c.writePump()
	c.readPump()
}

// readPump discards inbound frames; it exists to notice disconnects and
// answer pings.
func (c *client) readPump() {
	defer c.cleanup()
	c.ws.SetReadLimit(512)
	c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes on the connection, including pings.
func (c *client) writePump() {
	defer c.cleanup()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// send queues a frame; frames to a backed-up client are dropped, the ping
// loop's deadlines will reap it if it never drains.
func (c *client) send(data []byte) {
	select {
	case c.out <- data:
	default:
		c.logger.Warn("dropping frame for slow dashboard subscriber")
	}
}

func (c *client) close() {
	c.cleanup()
}

func (c *client) cleanup() {
	c.once.Do(func() {
		c.onClose(c)
		close(c.done)
		_ = c.ws.Close()
	})
}
