package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordpair/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertUser(t *testing.T, db *DB, id, token, email string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, fcm_token, email) VALUES (?, ?, ?)`,
		id, token, email)
	require.NoError(t, err)
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)

	users, err := db.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	insertUser(t, db, "u1", "tok1", "u1@example.com")
	insertUser(t, db, "u2", "", "")

	users, err = db.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, "tok1", users[0].FCMToken)
	assert.Equal(t, "u1@example.com", users[0].Email)
	assert.False(t, users[1].HasPushDestination())
	assert.False(t, users[1].HasEmailDestination())
}

func TestGetDailyStatusAbsent(t *testing.T) {
	db := newTestDB(t)

	record, err := db.GetDailyStatus(context.Background(), "2024-02-29_u1")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.False(t, record.HasResponded())
}

func TestMarkNotResponded(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.MarkNotResponded(context.Background(), "2024-02-29", "u1", now))

	record, err := db.GetDailyStatus(context.Background(), "2024-02-29_u1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "2024-02-29_u1", record.Key)
	assert.Equal(t, "u1", record.UserID)
	assert.Equal(t, "2024-02-29", record.Date)
	assert.False(t, record.Responded)
	assert.Equal(t, models.StatusNotResponded, record.Status)
}

func TestMarkNotRespondedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	require.NoError(t, db.MarkNotResponded(context.Background(), "2024-02-29", "u1", now))
	require.NoError(t, db.MarkNotResponded(context.Background(), "2024-02-29", "u1", now.Add(time.Minute)))

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM daily_status WHERE user_id = 'u1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "repeated marks must merge into one record")

	record, err := db.GetDailyStatus(context.Background(), "2024-02-29_u1")
	require.NoError(t, err)
	assert.False(t, record.Responded)
	assert.Equal(t, models.StatusNotResponded, record.Status)
}

func TestMarkNotRespondedOverwritesRespondedFlag(t *testing.T) {
	db := newTestDB(t)

	// Response-submission flow wrote responded=true with its own status.
	_, err := db.Exec(`INSERT INTO daily_status (key, user_id, date, responded, status)
		VALUES ('2024-02-29_u1', 'u1', '2024-02-29', 1, 'completed')`)
	require.NoError(t, err)

	require.NoError(t, db.MarkNotResponded(context.Background(), "2024-02-29", "u1", time.Now()))

	record, err := db.GetDailyStatus(context.Background(), "2024-02-29_u1")
	require.NoError(t, err)
	assert.False(t, record.Responded)
	assert.Equal(t, models.StatusNotResponded, record.Status)
}

func TestSeparateDaysGetSeparateRecords(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.MarkNotResponded(context.Background(), "2024-02-29", "u1", time.Now()))
	require.NoError(t, db.MarkNotResponded(context.Background(), "2024-03-01", "u1", time.Now()))

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM daily_status WHERE user_id = 'u1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInsertAndCleanupAuditRows(t *testing.T) {
	db := newTestDB(t)

	rows := []AuditRow{
		{RunID: "r1", Trigger: "mark_not_responded", Date: "2024-02-29", UserID: "u1", Channel: "push", Outcome: "sent"},
		{RunID: "r1", Trigger: "mark_not_responded", Date: "2024-02-29", UserID: "u2", Channel: "none", Outcome: "skipped_responded"},
	}
	require.NoError(t, db.InsertAuditRows(context.Background(), rows))

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM dispatch_audit WHERE run_id = 'r1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Nothing is old enough to delete yet.
	deleted, err := db.DeleteOldAuditRows(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = db.DeleteOldAuditRows(context.Background(), -time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestGetTableData(t *testing.T) {
	db := newTestDB(t)
	insertUser(t, db, "u1", "tok1", "u1@example.com")

	names, err := db.GetTableNames(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "dispatch_audit")

	data, columns, err := db.GetTableData(context.Background(), "users")
	require.NoError(t, err)
	assert.Contains(t, columns, "id")
	require.Len(t, data, 1)
	assert.Equal(t, "u1", data[0]["id"])

	_, _, err = db.GetTableData(context.Background(), "sqlite_master; DROP TABLE users")
	assert.Error(t, err)
}
