// internal/domain/models/schedule.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Period is one named slot in an organization's schedule template
// (e.g. "Period 1", 09:00–09:40). Start and End are zero-padded "HH:MM"
// strings, so lexicographic comparison equals chronological comparison.
type Period struct {
	Name  string `bson:"name" json:"name"`
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// ScheduleTemplate is the per-organization booking grid: an ordered list
// of periods, stored sorted by Start ascending. It is replaced wholesale
// by administrators and read-only to the booking engine.
type ScheduleTemplate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Periods        []Period           `bson:"periods" json:"periods"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ParseClock validates an "HH:MM" wall-clock string and returns it in
// canonical zero-padded form.
func ParseClock(s string) (string, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	return t.Format("15:04"), nil
}

// ParseDate validates a "YYYY-MM-DD" calendar date and returns it in
// canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t.Format("2006-01-02"), nil
}

// AddDays shifts a canonical "YYYY-MM-DD" date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
	}
	return t.AddDate(0, 0, n).Format("2006-01-02"), nil
}
