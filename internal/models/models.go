package models

import "time"

// StatusNotResponded is the only status value this service ever writes.
// Records with responded=true are written by the response-submission flow,
// which owns the rest of the status vocabulary.
const StatusNotResponded = "not_responded"

// User is a study participant as seen by the dispatcher. The enrollment
// flow owns this data; the dispatcher only reads it.
type User struct {
	ID       string
	FCMToken string
	Email    string
}

// HasPushDestination reports whether a push notification can be addressed
// to this user.
func (u User) HasPushDestination() bool {
	return u.FCMToken != ""
}

// HasEmailDestination reports whether an email can be addressed to this user.
func (u User) HasEmailDestination() bool {
	return u.Email != ""
}

// DailyStatus is one user's response state for one calendar day.
// At most one record exists per (date, user) pair; the composite day key
// is the sole identifier and all writes are upsert-merges.
type DailyStatus struct {
	Key       string
	UserID    string
	Date      string // YYYY-MM-DD in the study time zone
	Responded bool
	Status    string
	Timestamp time.Time
}

// DayKey builds the composite identifier for a (date, user) pair.
// Date must already be formatted as YYYY-MM-DD.
func DayKey(date, userID string) string {
	return date + "_" + userID
}

// HasResponded reports whether a status record counts as a completed
// response. A nil record means no response was recorded at all.
func (s *DailyStatus) HasResponded() bool {
	return s != nil && s.Responded
}
