package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wordpair/internal/models"
)

// GetDailyStatus returns the status record for the given day key,
// or nil when no record exists.
func (db *DB) GetDailyStatus(ctx context.Context, key string) (*models.DailyStatus, error) {
	var (
		s  models.DailyStatus
		ts sql.NullTime
	)
	err := db.QueryRowContext(ctx,
		`SELECT key, user_id, date, responded, status, timestamp
		 FROM daily_status WHERE key = ?`, key,
	).Scan(&s.Key, &s.UserID, &s.Date, &s.Responded, &s.Status, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily status %s: %w", key, err)
	}
	if ts.Valid {
		s.Timestamp = ts.Time
	}
	return &s, nil
}

// MarkNotResponded upserts the not-responded marker for a (date, user) pair.
// The write is a merge: an existing row keeps any columns this statement
// does not set, and re-running for the same key is idempotent.
func (db *DB) MarkNotResponded(ctx context.Context, date, userID string, now time.Time) error {
	key := models.DayKey(date, userID)
	_, err := db.ExecContext(ctx,
		`INSERT INTO daily_status (key, user_id, date, responded, status, timestamp)
		 VALUES (?, ?, ?, 0, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			user_id = excluded.user_id,
			date = excluded.date,
			responded = excluded.responded,
			status = excluded.status,
			timestamp = excluded.timestamp`,
		key, userID, date, models.StatusNotResponded, now,
	)
	if err != nil {
		return fmt.Errorf("mark not responded %s: %w", key, err)
	}
	return nil
}
