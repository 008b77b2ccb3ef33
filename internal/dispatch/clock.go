package dispatch

import "time"

// DateIn formats the calendar date of t in the given zone as YYYY-MM-DD.
func DateIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// TodayDate returns today's calendar date in the given zone, independent
// of the machine's own time zone.
func TodayDate(loc *time.Location) string {
	return DateIn(time.Now(), loc)
}
