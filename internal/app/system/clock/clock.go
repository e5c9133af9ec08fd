// internal/app/system/clock/clock.go
//
// Package clock holds the small amount of wall-clock arithmetic the
// sweeper and dashboard need. "Today" is always recomputed from the
// organization's time zone at read time; nothing derived from the current
// time is ever stored on a document.
package clock

import "time"

// Today returns the current calendar date in loc as "YYYY-MM-DD".
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc).Format("2006-01-02")
}
