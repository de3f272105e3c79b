// Package events provides the aquarium journal: an append-only record of
// feedings, health changes and clock control.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a journal event.
type EventType string

const (
	EventTypeFishLoaded     EventType = "FISH_LOADED"
	EventTypeFeedAccepted   EventType = "FEED_ACCEPTED"
	EventTypeFeedForgiven   EventType = "FEED_FORGIVEN"
	EventTypeFeedRejected   EventType = "FEED_REJECTED"
	EventTypeFeedRefused    EventType = "FEED_REFUSED"
	EventTypeHealthDeclined EventType = "HEALTH_DECLINED"
	EventTypeFishDied       EventType = "FISH_DIED"
	EventTypeDayRollover    EventType = "DAY_ROLLOVER"
	EventTypeClockStarted   EventType = "CLOCK_STARTED"
	EventTypeClockStopped   EventType = "CLOCK_STOPPED"
	EventTypeClockPaused    EventType = "CLOCK_PAUSED"
	EventTypeClockResumed   EventType = "CLOCK_RESUMED"
	EventTypeSpeedChanged   EventType = "SPEED_CHANGED"
	EventTypeTimeSet        EventType = "TIME_SET"
)

// FeedPayload holds the details of a feeding attempt.
type FeedPayload struct {
	Amount       string `json:"amount"`
	Recommended  string `json:"recommended"`
	InWindow     bool   `json:"in_window"`
	HealthBefore string `json:"health_before"`
	HealthAfter  string `json:"health_after"`
}

// HealthPayload holds the details of a tick-driven health change.
type HealthPayload struct {
	From            string `json:"from"`
	To              string `json:"to"`
	SkippedFeedings int    `json:"skipped_feedings"`
}

// ClockPayload holds clock control details.
type ClockPayload struct {
	Speed float64 `json:"speed,omitempty"`
	Label string  `json:"label,omitempty"`
}

// Event is an immutable journal entry.
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"` // wall clock
	SimTime   time.Time   `json:"sim_time"`  // simulated clock
	Type      EventType   `json:"type"`
	FishID    int         `json:"fish_id,omitempty"` // 0 for clock events
	Payload   interface{} `json:"payload,omitempty"`
	SimDay    string      `json:"sim_day"` // YYYY-MM-DD of SimTime
}

// SimDayOf returns the journal day key for a simulated time.
func SimDayOf(t time.Time) string {
	return t.Format(time.DateOnly)
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event Event) error
}

// EventLog is the in-memory append-only journal.
type EventLog struct {
	mu        sync.RWMutex
	events    []Event
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]Event, 0),
		persister: persister,
	}
}

// Append adds an event to the log and writes it through to the persister.
// The event is kept in memory even when persistence fails.
func (el *EventLog) Append(event Event) error {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.SimDay == "" && !event.SimTime.IsZero() {
		event.SimDay = SimDayOf(event.SimTime)
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	el.mu.Unlock()

	if el.persister != nil {
		return el.persister.Append(event)
	}
	return nil
}

// Len returns the number of events in the log.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GetByFish returns all events concerning one fish.
func (el *EventLog) GetByFish(fishID int) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.FishID == fishID {
			result = append(result, e)
		}
	}
	return result
}

// GetByDay returns all events that happened on a simulated day (YYYY-MM-DD).
func (el *EventLog) GetByDay(day string) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []Event
	for _, e := range el.events {
		if e.SimDay == day {
			result = append(result, e)
		}
	}
	return result
}

// Since returns the events appended after the first n.
func (el *EventLog) Since(n int) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n >= len(el.events) {
		return nil
	}
	out := make([]Event, len(el.events)-n)
	copy(out, el.events[n:])
	return out
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []Event {
	return el.Since(0)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
