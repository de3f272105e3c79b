package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite opens the journal database and creates the schemas. dsn may be a
// plain file path, a "file:" URI or ":memory:".
func InitSQLite(dsn string) (*sql.DB, error) {
	if isFilePath(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

func isFilePath(dsn string) bool {
	return dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS journal_events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			sim_time_ms INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			fish_id INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			sim_day TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_session ON journal_events(session_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_fish ON journal_events(session_id, fish_id);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_day ON journal_events(session_id, sim_day);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
