package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/MRamiBalles/aquarium-sim/internal/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Upper bound for a LOAD command issued over the socket.
	loadTimeout = 30 * time.Second
)

// Simulator is the part of the engine clients may drive.
type Simulator interface {
	Feed(fishID int, amount float64) engine.FeedResult
	Start()
	Stop()
	Pause()
	Resume()
	SetSpeed(speed float64) bool
	Load(ctx context.Context) error
	Snapshot() engine.Snapshot
	FeedingScheduleInfo(fishID int) (engine.ScheduleInfo, bool)
}

// Command represents an incoming instruction from the frontend.
type Command struct {
	Type   string  `json:"type"` // "FEED", "START", "STOP", "PAUSE", "RESUME", "SET_SPEED", "LOAD"
	FishID int     `json:"fish_id,omitempty"`
	Amount float64 `json:"amount,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
}

// Client is a single WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	ready chan struct{} // closed once the hub accepted or rejected the client
	seq   uint64        // join order, set by the hub

	sendMu sync.Mutex
	closed bool

	limiter *rate.Limiter
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.tuning.ClientSendBuffer),
		ready:   make(chan struct{}),
		limiter: newCommandLimiter(hub.tuning.MaxMessagesPerSecond),
	}
}

// newCommandLimiter allows perSecond commands per second with bursts of the same size.
func newCommandLimiter(perSecond int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// Register adds the client to the hub and waits until the hub decided on it.
func (c *Client) Register() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.closeSend()
		return
	}
	select {
	case <-c.ready:
	case <-c.hub.done:
	}
}

// ReadPump pumps messages from the websocket connection to the simulator.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read error: %v", err)
				c.hub.metrics.RecordWSError()
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Error("Failed to parse Command from WebSocket: %v", err)
			c.reply("error", map[string]string{"message": "invalid command"})
			continue
		}

		c.handleCommand(cmd)
	}
}

func (c *Client) allow(now time.Time) bool {
	return c.limiter.AllowN(now, 1)
}

func (c *Client) handleCommand(cmd Command) {
	if !c.hub.IsController(c) {
		c.hub.logger.Warn("Ignoring %s from a watching WebSocket client", cmd.Type)
		c.reply("error", map[string]string{"message": "read-only: another client controls the simulation"})
		return
	}
	if !c.allow(time.Now()) {
		c.hub.logger.Warn("Rate limit exceeded for WebSocket command %s", cmd.Type)
		c.reply("error", map[string]string{"message": "rate limit exceeded"})
		return
	}

	sim := c.hub.sim
	switch cmd.Type {
	case "FEED":
		c.reply("feed_result", sim.Feed(cmd.FishID, cmd.Amount))
	case "START":
		sim.Start()
	case "STOP":
		sim.Stop()
	case "PAUSE":
		sim.Pause()
	case "RESUME":
		sim.Resume()
	case "SET_SPEED":
		if !sim.SetSpeed(cmd.Speed) {
			c.reply("error", map[string]string{"message": "speed must be positive"})
		}
	case "LOAD":
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		err := sim.Load(ctx)
		cancel()
		if err != nil {
			c.reply("error", map[string]string{"message": err.Error()})
		}
	default:
		c.hub.logger.Warn("Unknown Command type: %s", cmd.Type)
		c.reply("error", map[string]string{"message": "unknown command " + cmd.Type})
	}
}

// reply sends a frame to this client only, dropping it if the buffer is full.
func (c *Client) reply(kind string, data interface{}) {
	payload, err := json.Marshal(Envelope{Type: kind, Data: data})
	if err != nil {
		c.hub.logger.Error("Failed to serialize %s reply: %v", kind, err)
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.metrics.RecordDroppedFrame()
	}
}

// closeSend closes the outbound channel once. Only the hub calls it.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
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
				c.hub.metrics.RecordWSError()
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
