package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/aquarium-sim/internal/engine"
	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/infra/storage"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/metrics"
	"github.com/MRamiBalles/aquarium-sim/internal/view"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the UI is served from a separate dev server
	},
}

// Server is the HTTP surface of the simulator.
type Server struct {
	sim       Simulator
	hub       *Hub
	journal   *JournalHandler
	history   *HistoryHandler
	localizer *view.Localizer
	metrics   *metrics.Collector
	logger    *logger.Logger
}

// NewServer wires the API, the journal and the WebSocket endpoint.
func NewServer(sim Simulator, hub *Hub, eventLog *events.EventLog, loc *view.Localizer, m *metrics.Collector, log *logger.Logger) *Server {
	return &Server{
		sim:       sim,
		hub:       hub,
		journal:   NewJournalHandler(eventLog, loc, log),
		localizer: loc,
		metrics:   m,
		logger:    log,
	}
}

// EnableHistory serves persisted session journals from repo, rendering
// simulated times in zone.
func (s *Server) EnableHistory(repo storage.EventRepository, zone *time.Location) {
	s.history = NewHistoryHandler(repo, zone, s.localizer, s.logger)
}

// Routes returns the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/load", s.handleLoad)
	mux.HandleFunc("GET /api/fish/{id}/schedule", s.handleSchedule)
	mux.HandleFunc("POST /api/fish/{id}/feed", s.handleFeed)
	mux.HandleFunc("POST /api/clock/speed", s.handleSpeed)
	mux.HandleFunc("POST /api/clock/{action}", s.handleClock)
	mux.HandleFunc("GET /api/speeds", s.handleSpeeds)
	s.journal.RegisterRoutes(mux)
	if s.history != nil {
		mux.HandleFunc("GET /api/sessions/{session}/events", s.history.HandleHistory)
	}
	mux.HandleFunc("GET /ws", s.serveWs)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) state() view.StateView {
	return s.localizer.Render(s.sim.Snapshot())
}

// GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

// POST /api/load
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	err := s.sim.Load(r.Context())
	switch {
	case errors.Is(err, engine.ErrLoadInProgress):
		writeError(w, err.Error(), http.StatusConflict)
	case err != nil:
		writeError(w, s.localizer.LoadFailed(), http.StatusBadGateway)
	default:
		writeJSON(w, http.StatusOK, s.state())
	}
}

type feedRequest struct {
	Amount *float64 `json:"amount"`
}

// POST /api/fish/{id}/feed {"amount": 0.5}
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, "fish id must be an integer", http.StatusBadRequest)
		return
	}
	var req feedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		writeError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	res := s.sim.Feed(id, *req.Amount)
	status := http.StatusOK
	switch res.Outcome {
	case engine.FeedRefusedUnknown:
		status = http.StatusNotFound
	case engine.FeedRefusedDead:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{
		"ok":     res.OK(),
		"result": res,
	})
}

// GET /api/fish/{id}/schedule
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, "fish id must be an integer", http.StatusBadRequest)
		return
	}
	info, ok := s.sim.FeedingScheduleInfo(id)
	if !ok {
		writeError(w, "Fish not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// POST /api/clock/{start|stop|pause|resume}
func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	switch r.PathValue("action") {
	case "start":
		s.sim.Start()
	case "stop":
		s.sim.Stop()
	case "pause":
		s.sim.Pause()
	case "resume":
		s.sim.Resume()
	default:
		writeError(w, "Unknown clock action", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

// POST /api/clock/speed {"speed": 60}
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if !s.sim.SetSpeed(req.Speed) {
		writeError(w, "speed must be positive", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

// GET /api/speeds
func (s *Server) handleSpeeds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.SpeedPresets)
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade websocket connection: %v", err)
		s.metrics.RecordWSError()
		return
	}

	client := NewClient(s.hub, conn)
	client.Register()

	// Greet with the current state so the client never renders empty.
	client.reply("state", s.state())

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
