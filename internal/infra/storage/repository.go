// Package storage provides the persistence layer for the aquarium journal.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// JournalEvent mirrors the journal event structure for persistence.
type JournalEvent struct {
	ID        string                 `json:"id" db:"id"`
	SessionID string                 `json:"session_id" db:"session_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp_ms"`
	SimTime   time.Time              `json:"sim_time" db:"sim_time_ms"`
	EventType string                 `json:"event_type" db:"event_type"`
	FishID    int                    `json:"fish_id" db:"fish_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	SimDay    string                 `json:"sim_day" db:"sim_day"`
}

// EventRepository defines the interface for journal persistence.
type EventRepository interface {
	// Append adds a new event to the immutable journal.
	Append(ctx context.Context, event JournalEvent) error

	// GetBySession retrieves all events of one server session (for replay).
	GetBySession(ctx context.Context, sessionID string) ([]JournalEvent, error)

	// GetByFish retrieves all events concerning a fish.
	GetByFish(ctx context.Context, sessionID string, fishID int) ([]JournalEvent, error)

	// GetBySimDay retrieves all events from one simulated day (YYYY-MM-DD).
	GetBySimDay(ctx context.Context, sessionID, day string) ([]JournalEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, sessionID, eventType string) ([]JournalEvent, error)
}
