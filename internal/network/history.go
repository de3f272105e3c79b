package network

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/infra/storage"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/view"
)

// HistoryHandler serves journal events persisted by any session.
type HistoryHandler struct {
	repo      storage.EventRepository
	zone      *time.Location
	localizer *view.Localizer
	logger    *logger.Logger
}

// NewHistoryHandler creates a handler reading from repo. Stored instants are
// shown in zone, the simulation clock's location. A nil zone means UTC.
func NewHistoryHandler(repo storage.EventRepository, zone *time.Location, loc *view.Localizer, log *logger.Logger) *HistoryHandler {
	if zone == nil {
		zone = time.UTC
	}
	return &HistoryHandler{repo: repo, zone: zone, localizer: loc, logger: log}
}

// HandleHistory returns the persisted journal of one session.
// GET /api/sessions/{session}/events?fish_id=N&day=YYYY-MM-DD&type=FISH_DIED
func (hh *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	q := r.URL.Query()

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

	// The narrowest filter goes to SQL, the rest are applied here.
	var (
		rows []storage.JournalEvent
		err  error
	)
	switch {
	case fishID != 0:
		rows, err = hh.repo.GetByFish(r.Context(), session, fishID)
	case day != "":
		rows, err = hh.repo.GetBySimDay(r.Context(), session, day)
	case eventType != "":
		rows, err = hh.repo.GetByEventType(r.Context(), session, eventType)
	default:
		rows, err = hh.repo.GetBySession(r.Context(), session)
	}
	if err != nil {
		hh.logger.Error("History query for session %s failed: %v", session, err)
		writeError(w, "History unavailable", http.StatusInternalServerError)
		return
	}

	entries := make([]JournalEntry, 0, len(rows))
	for _, row := range rows {
		if day != "" && row.SimDay != day {
			continue
		}
		if eventType != "" && row.EventType != eventType {
			continue
		}
		entries = append(entries, hh.convert(row))
	}

	writeJSON(w, http.StatusOK, JournalResponse{
		TotalEvents: len(entries),
		Next:        len(rows),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      entries,
	})
}

func (hh *HistoryHandler) convert(row storage.JournalEvent) JournalEntry {
	entry := JournalEntry{
		ID:        row.ID,
		Timestamp: row.Timestamp.Local().Format("15:04:05"),
		SimTime:   hh.localizer.FormatTime(row.SimTime.In(hh.zone)),
		SimDay:    row.SimDay,
		Type:      row.EventType,
		FishID:    row.FishID,
		Summary:   hh.localizer.EventSummary(row.EventType),
		Impact:    impactOf(events.EventType(row.EventType)),
	}
	if len(row.Payload) > 0 {
		entry.Details = row.Payload
	}
	return entry
}
