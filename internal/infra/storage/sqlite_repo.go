package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const selectEvents = `SELECT id, session_id, timestamp_ms, sim_time_ms, event_type, fish_id, payload, sim_day FROM journal_events`

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event JournalEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO journal_events (id, session_id, seq, timestamp_ms, sim_time_ms, event_type, fish_id, payload, sim_day)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM journal_events WHERE session_id = ?), ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.SessionID,
		toMillis(event.Timestamp), toMillis(event.SimTime), event.EventType,
		event.FishID, string(payloadBytes), event.SimDay,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]JournalEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []JournalEvent
	for rows.Next() {
		var e JournalEvent
		var payloadStr string
		var tsMillis, simMillis int64
		err := rows.Scan(
			&e.ID, &e.SessionID, &tsMillis, &simMillis, &e.EventType,
			&e.FishID, &payloadStr, &e.SimDay,
		)
		if err != nil {
			return nil, err
		}
		e.Timestamp = fromMillis(tsMillis)
		e.SimTime = fromMillis(simMillis)
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetBySession(ctx context.Context, sessionID string) ([]JournalEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE session_id = ? ORDER BY seq ASC`, sessionID)
}

func (r *SQLiteEventRepository) GetByFish(ctx context.Context, sessionID string, fishID int) ([]JournalEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE session_id = ? AND fish_id = ? ORDER BY seq ASC`, sessionID, fishID)
}

func (r *SQLiteEventRepository) GetBySimDay(ctx context.Context, sessionID, day string) ([]JournalEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE session_id = ? AND sim_day = ? ORDER BY seq ASC`, sessionID, day)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, sessionID, eventType string) ([]JournalEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE session_id = ? AND event_type = ? ORDER BY seq ASC`, sessionID, eventType)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
