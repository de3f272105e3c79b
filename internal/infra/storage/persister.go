package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/events"
)

// JournalPersister translates journal events to storage events.
type JournalPersister struct {
	repo      EventRepository
	sessionID string
	timeout   time.Duration
}

// NewJournalPersister writes events for one session through repo.
func NewJournalPersister(repo EventRepository, sessionID string) *JournalPersister {
	return &JournalPersister{repo: repo, sessionID: sessionID, timeout: 5 * time.Second}
}

// Append implements events.EventPersister.
func (p *JournalPersister) Append(event events.Event) error {
	payload, err := payloadMap(event.Payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.repo.Append(ctx, JournalEvent{
		ID:        event.ID,
		SessionID: p.sessionID,
		Timestamp: event.Timestamp,
		SimTime:   event.SimTime,
		EventType: string(event.Type),
		FishID:    event.FishID,
		Payload:   payload,
		SimDay:    event.SimDay,
	})
}

func payloadMap(payload interface{}) (map[string]interface{}, error) {
	if payload == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	return m, nil
}
