// internal/domain/models/metrics.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingMetrics is the cached per-organization dashboard counter set,
// recomputed by the consistency sweeper. The dashboard reads it instead
// of re-aggregating the bookings collection on every widget load.
type BookingMetrics struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`

	// Date the counters describe, in the organization's time zone.
	Date string `bson:"date" json:"date"`

	// TodayBookings counts non-rejected bookings on Date that reference
	// a live resource.
	TodayBookings int64 `bson:"today_bookings" json:"today_bookings"`

	ComputedAt time.Time `bson:"computed_at" json:"computed_at"`
}
