package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Message is one frame on the stream
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// inbound is what clients may send
type inbound struct {
	Type string `json:"type"`
}

// client is one stream connection. Outgoing state is coalesced by type: a
// slow reader gets the latest desktop, not every intermediate one.
type client struct {
	id      string
	conn    *websocket.Conn
	metrics Recorder
	logger  *logging.Logger

	mu      sync.Mutex
	pending map[string]Message
	order   []string
	touched map[string]bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, metrics Recorder, logger *logging.Logger) *client {
	return &client{
		id:      id,
		conn:    conn,
		metrics: metrics,
		logger:  logger,
		pending: make(map[string]Message),
		touched: make(map[string]bool),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// push queues msg, replacing any unsent message of the same type. It never
// blocks, so it is safe to call from store listeners.
func (c *client) push(msg Message) {
	c.mu.Lock()
	c.touched[msg.Type] = true
	c.queueLocked(msg)
	c.mu.Unlock()
	c.signal()
}

// seed queues msg only if no live update of its type has been pushed yet
func (c *client) seed(msg Message) {
	c.mu.Lock()
	if c.touched[msg.Type] {
		c.mu.Unlock()
		return
	}
	c.queueLocked(msg)
	c.mu.Unlock()
	c.signal()
}

func (c *client) queueLocked(msg Message) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	if _, ok := c.pending[msg.Type]; !ok {
		c.order = append(c.order, msg.Type)
	}
	c.pending[msg.Type] = msg
}

func (c *client) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *client) drain() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.pending[t])
		delete(c.pending, t)
	}
	c.order = c.order[:0]
	return out
}

// serve runs the connection until either side closes it
func (c *client) serve(handle func(inbound)) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop()
	}()

	c.readLoop(handle)
	c.close()
	wg.Wait()
}

func (c *client) readLoop(handle func(inbound)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("WebSocket read error", zap.String("conn", c.id), zap.Error(err))
			}
			return
		}

		var msg inbound
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.push(Message{Type: TypeError, Message: "malformed message"})
			continue
		}
		if c.metrics != nil {
			c.metrics.RecordWSMessage("in", msg.Type)
		}
		handle(msg)
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
		case <-c.wake:
			for _, msg := range c.drain() {
				if err := c.write(msg); err != nil {
					c.logger.Debug("WebSocket write failed", zap.String("conn", c.id), zap.Error(err))
					c.close()
					return
				}
			}
		}
	}
}

func (c *client) write(msg Message) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to encode stream message", zap.String("type", msg.Type), zap.Error(err))
		return nil
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", msg.Type)
	}
	return nil
}

// goAway tells the peer the server is leaving, then drops the connection
func (c *client) goAway() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.close()
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
