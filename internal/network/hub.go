package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/metrics"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/optimization"
)

// Envelope wraps every frame pushed to clients.
type Envelope struct {
	Type string      `json:"type"` // "state", "event", "feed_result", "error"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Every client watches; only the controller may drive the simulator. The
// longest-connected remaining client takes over when the controller leaves.
type Hub struct {
	clients    map[*Client]bool
	controller *Client
	joined     uint64
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
	tuning     *optimization.Config
	sim        Simulator
}

// NewHub initializes a new WebSocket Hub. Commands received from clients are
// applied to sim.
func NewHub(sim Simulator, tuning *optimization.Config, m *metrics.Collector, log *logger.Logger) *Hub {
	if tuning == nil {
		tuning = optimization.DefaultConfig()
	}
	return &Hub{
		broadcast:  make(chan []byte, tuning.BroadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    m,
		tuning:     tuning,
		sim:        sim,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			h.controller = nil
			h.mu.Unlock()
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.tuning.MaxClients {
				h.mu.Unlock()
				h.logger.Warn("Rejecting WebSocket client, limit of %d reached", h.tuning.MaxClients)
				client.closeSend()
				close(client.ready)
				continue
			}
			h.joined++
			client.seq = h.joined
			h.clients[client] = true
			if h.controller == nil {
				h.controller = client
			}
			h.mu.Unlock()
			close(client.ready)
			h.metrics.RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.handOver(client)
				client.closeSend()
				h.metrics.RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.RecordWSMessage(false)
				default:
					// Slow consumer: drop it rather than stall the tick path.
					client.closeSend()
					delete(h.clients, client)
					h.handOver(client)
					h.metrics.RecordWSConnection(-1)
					h.metrics.RecordDroppedFrame()
				}
			}
			h.mu.Unlock()
		}
	}
}

// handOver passes control to the longest-connected client when gone was the
// controller. Callers hold h.mu.
func (h *Hub) handOver(gone *Client) {
	if h.controller != gone {
		return
	}
	h.controller = nil
	for c := range h.clients {
		if h.controller == nil || c.seq < h.controller.seq {
			h.controller = c
		}
	}
	if h.controller != nil {
		h.logger.Info("WebSocket control handed to the next client")
		h.controller.reply("role", map[string]bool{"controller": true})
	}
}

// IsController reports whether c may send commands.
func (h *Hub) IsController(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.controller == c
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues a frame for every client without blocking. Frames are
// dropped when the broadcast buffer is full.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.metrics.RecordDroppedFrame()
		h.logger.Debug("Broadcast buffer full, dropping frame")
	}
}

// BroadcastJSON serializes an Envelope and broadcasts it.
func (h *Hub) BroadcastJSON(kind string, data interface{}) {
	payload, err := json.Marshal(Envelope{Type: kind, Data: data})
	if err != nil {
		h.logger.Error("Failed to serialize %s frame for WebSocket broadcast: %v", kind, err)
		return
	}
	h.Broadcast(payload)
}

// StartEventPoller spawns a goroutine to poll the EventLog and push new events to the Hub.
// This allows the Hub to run independently from the tick path while picking up the same events.
// A nil clk polls on real time.
func (h *Hub) StartEventPoller(ctx context.Context, eventLog *events.EventLog, clk clockwork.Clock, interval time.Duration) {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	go func() {
		pollInterval := clk.NewTicker(interval)
		defer pollInterval.Stop()

		lastProcessedEvent := eventLog.Len()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.Chan():
				newEvents := eventLog.Since(lastProcessedEvent)
				for _, event := range newEvents {
					h.BroadcastJSON("event", event)
				}
				lastProcessedEvent += len(newEvents)
			}
		}
	}()
}
