package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/engine"
	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/infra/storage"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/optimization"
	"github.com/MRamiBalles/aquarium-sim/internal/view"
)

func TestSessionHistory(t *testing.T) {
	db, err := storage.InitSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := storage.NewSQLiteEventRepository(db)

	eventLog := events.NewEventLog(storage.NewJournalPersister(repo, "s1"))
	eng := engine.NewEngine(engine.Options{
		Source: engine.NewManualTickSource(),
		Fetcher: staticFetcher{{
			ID: 1, Type: "Clownfish", Name: "Nemo", Weight: 100,
			FeedingSchedule: fish.RawSchedule{LastFeed: "12:00", IntervalInHours: 12},
		}},
		Start:    noon,
		EventLog: eventLog,
	})
	if err := eng.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	eng.Feed(1, 0.5)
	eng.Feed(1, 0.5)

	hub := NewHub(eng, optimization.DefaultConfig(), nil, logger.Discard())
	srv := NewServer(eng, hub, eventLog, view.NewLocalizer("en"), nil, logger.Discard())
	srv.EnableHistory(repo, time.UTC)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	tests := []struct {
		name  string
		query string
		want  int
		first string
	}{
		{"whole session", "/api/sessions/s1/events", 3, "FISH_LOADED"},
		{"by fish", "/api/sessions/s1/events?fish_id=1", 2, "FEED_ACCEPTED"},
		{"by fish and type", "/api/sessions/s1/events?fish_id=1&type=FEED_REJECTED", 1, "FEED_REJECTED"},
		{"by day", "/api/sessions/s1/events?day=2024-01-01", 3, "FISH_LOADED"},
		{"unknown session", "/api/sessions/other/events", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.query)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			var body JournalResponse
			decode(t, resp, &body)
			if body.TotalEvents != tt.want {
				t.Fatalf("expected %d events, got %d", tt.want, body.TotalEvents)
			}
			if tt.first != "" && body.Events[0].Type != tt.first {
				t.Errorf("expected first event %s, got %s", tt.first, body.Events[0].Type)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/api/sessions/s1/events?fish_id=nemo")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad fish id, got %d", resp.StatusCode)
	}
}

func TestSessionHistoryKeepsClockZone(t *testing.T) {
	db, err := storage.InitSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := storage.NewSQLiteEventRepository(db)

	istanbul := time.FixedZone("UTC+3", 3*60*60)
	// 01:30 local is still the previous day in UTC.
	start := time.Date(2024, 1, 2, 1, 30, 0, 0, istanbul)

	eventLog := events.NewEventLog(storage.NewJournalPersister(repo, "tz"))
	eng := engine.NewEngine(engine.Options{
		Source: engine.NewManualTickSource(),
		Fetcher: staticFetcher{{
			ID: 1, Type: "Clownfish", Name: "Nemo", Weight: 100,
			FeedingSchedule: fish.RawSchedule{LastFeed: "01:00", IntervalInHours: 12},
		}},
		Start:    start,
		EventLog: eventLog,
	})
	if err := eng.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	hub := NewHub(eng, optimization.DefaultConfig(), nil, logger.Discard())
	srv := NewServer(eng, hub, eventLog, view.NewLocalizer("tr"), nil, logger.Discard())
	srv.EnableHistory(repo, istanbul)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	fetch := func(path string) JournalEntry {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		defer resp.Body.Close()
		var body JournalResponse
		decode(t, resp, &body)
		if len(body.Events) != 1 {
			t.Fatalf("GET %s: expected 1 event, got %d", path, len(body.Events))
		}
		return body.Events[0]
	}

	live := fetch("/api/events")
	stored := fetch("/api/sessions/tz/events")

	if live.SimTime != "02.01.2024 01:30:00" {
		t.Errorf("unexpected live sim time %q", live.SimTime)
	}
	if stored.SimTime != live.SimTime {
		t.Errorf("history shows %q, live journal shows %q", stored.SimTime, live.SimTime)
	}
	if stored.SimDay != "2024-01-02" || stored.SimDay != live.SimDay {
		t.Errorf("sim day mismatch: history %q, live %q", stored.SimDay, live.SimDay)
	}
}
