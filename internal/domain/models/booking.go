// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses. Pending and approved bookings occupy their slot;
// rejected bookings are kept for the audit trail but never conflict and
// never appear in aggregates.
const (
	BookingPending  = "pending"
	BookingApproved = "approved"
	BookingRejected = "rejected"
)

// Booking is one reservation of a resource for a contiguous run of
// template periods on a single date. StartTime/EndTime are always the
// boundary times of those periods, never arbitrary clock values.
//
// Invariant: for a fixed (ResourceID, Date), bookings whose status is not
// rejected are pairwise non-overlapping on [StartTime, EndTime).
type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	ResourceID     primitive.ObjectID `bson:"resource_id" json:"resource_id"`

	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OwnerName string             `bson:"owner_name" json:"owner_name"`

	Date      string `bson:"date" json:"date"`             // "YYYY-MM-DD"
	StartTime string `bson:"start_time" json:"start_time"` // "HH:MM"
	EndTime   string `bson:"end_time" json:"end_time"`     // "HH:MM"

	Status  string `bson:"status" json:"status"`
	Purpose string `bson:"purpose,omitempty" json:"purpose,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Overlaps reports whether [StartTime, EndTime) intersects [start, end).
// Equal boundaries do not overlap: a booking ending at 10:00 coexists
// with one starting at 10:00.
func (b Booking) Overlaps(start, end string) bool {
	return b.StartTime < end && b.EndTime > start
}
