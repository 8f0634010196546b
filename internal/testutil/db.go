package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/clubconnect/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// InsertPlayer adds a bare roster entry and returns its id.
func InsertPlayer(t *testing.T, database *db.DB, name string) int64 {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		"INSERT INTO players (name, active) VALUES (?, 1)",
		name,
	)
	if err != nil {
		t.Fatalf("insert player: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("player id: %v", err)
	}
	return id
}

// InsertEvent adds a training event on the given date (YYYY-MM-DD) and time (HH:MM).
func InsertEvent(t *testing.T, database *db.DB, title, date, startTime string) int64 {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		"INSERT INTO events (title, event_type, event_date, start_time) VALUES (?, ?, ?, ?)",
		title,
		"training",
		date,
		startTime,
	)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("event id: %v", err)
	}
	return id
}
