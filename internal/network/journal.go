package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/view"
)

// JournalHandler exposes the event journal over HTTP.
type JournalHandler struct {
	eventLog  *events.EventLog
	localizer *view.Localizer
	logger    *logger.Logger
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(el *events.EventLog, loc *view.Localizer, log *logger.Logger) *JournalHandler {
	return &JournalHandler{
		eventLog:  el,
		localizer: loc,
		logger:    log,
	}
}

// JournalEntry is an event decorated for display.
type JournalEntry struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	SimTime   string      `json:"sim_time"`
	SimDay    string      `json:"sim_day"`
	Type      string      `json:"type"`
	FishID    int         `json:"fish_id,omitempty"`
	Summary   string      `json:"summary"`
	Impact    string      `json:"impact"`
	Details   interface{} `json:"details,omitempty"`
}

// JournalResponse is the API response for a journal query.
type JournalResponse struct {
	TotalEvents int            `json:"total_events"`
	Next        int            `json:"next"` // pass as ?since= to fetch only newer events
	GeneratedAt string         `json:"generated_at"`
	Events      []JournalEntry `json:"events"`
}

// HandleReplay returns journal entries.
// GET /api/events?fish_id=N&day=YYYY-MM-DD&type=FEED_ACCEPTED&since=N
func (jh *JournalHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	since := 0
	if s := q.Get("since"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
		since = n
	}

	fishID := 0
	if s := q.Get("fish_id"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, "fish_id must be an integer", http.StatusBadRequest)
			return
		}
		fishID = n
	}
	day := q.Get("day")
	eventType := q.Get("type")

	all := jh.eventLog.Since(since)
	entries := make([]JournalEntry, 0, len(all))
	for _, e := range all {
		if fishID != 0 && e.FishID != fishID {
			continue
		}
		if day != "" && e.SimDay != day {
			continue
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		entries = append(entries, jh.convert(e))
	}

	jh.logger.Debug("Journal query since=%d fish=%d day=%q type=%q returned %d events", since, fishID, day, eventType, len(entries))

	writeJSON(w, http.StatusOK, JournalResponse{
		TotalEvents: len(entries),
		Next:        since + len(all),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      entries,
	})
}

// HandleEventDetail returns a single event with its payload.
// GET /api/events/{id}
func (jh *JournalHandler) HandleEventDetail(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	for _, e := range jh.eventLog.Replay() {
		if e.ID == eventID {
			entry := jh.convert(e)
			entry.Details = e.Payload
			writeJSON(w, http.StatusOK, entry)
			return
		}
	}
	writeError(w, "Event not found", http.StatusNotFound)
}

// HandleStats returns counts per event type.
// GET /api/events/stats
func (jh *JournalHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	all := jh.eventLog.Replay()
	stats := map[string]int{"total_events": len(all)}
	for _, e := range all {
		stats[string(e.Type)]++
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// RegisterRoutes sets up the journal routes.
func (jh *JournalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/events", jh.HandleReplay)
	mux.HandleFunc("GET /api/events/stats", jh.HandleStats)
	mux.HandleFunc("GET /api/events/{id}", jh.HandleEventDetail)
}

func (jh *JournalHandler) convert(e events.Event) JournalEntry {
	return JournalEntry{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format("15:04:05"),
		SimTime:   jh.localizer.FormatTime(e.SimTime),
		SimDay:    e.SimDay,
		Type:      string(e.Type),
		FishID:    e.FishID,
		Summary:   jh.localizer.EventSummary(string(e.Type)),
		Impact:    impactOf(e.Type),
	}
}

// impactOf classifies the event impact.
func impactOf(t events.EventType) string {
	switch t {
	case events.EventTypeFeedAccepted, events.EventTypeFeedForgiven:
		return "POSITIVE"
	case events.EventTypeFeedRejected, events.EventTypeFeedRefused,
		events.EventTypeHealthDeclined, events.EventTypeFishDied:
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends an error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
