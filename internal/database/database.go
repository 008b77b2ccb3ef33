package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the reminder dispatcher.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Participants. Owned by the enrollment flow; read-only here.
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			fcm_token TEXT,
			email TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per (date, user). key = "{date}_{user_id}".
		`CREATE TABLE IF NOT EXISTS daily_status (
			key TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			responded BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			timestamp DATETIME
		)`,

		// Per-user outcome of every dispatch run.
		`CREATE TABLE IF NOT EXISTS dispatch_audit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			trigger_name TEXT NOT NULL,
			date TEXT NOT NULL,
			user_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			outcome TEXT NOT NULL,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_daily_status_user ON daily_status(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_audit_run ON dispatch_audit(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_audit_date ON dispatch_audit(date)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity for readiness probes.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
