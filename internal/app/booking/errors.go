// internal/app/booking/errors.go
package booking

import (
	"errors"

	bookingstore "github.com/reservehub/reservehub/internal/app/store/bookings"
	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	schedulestore "github.com/reservehub/reservehub/internal/app/store/schedules"
)

// Engine error values. Each maps to one wire-level error kind; SlotConflict
// and Forbidden are ordinary outcomes under concurrent multi-user load, not
// exceptional ones, so callers should branch on them cheaply with errors.Is.
var (
	ErrNoSchedule      = errors.New("organization has no schedule template")
	ErrInvalidRange    = errors.New("invalid period range")
	ErrSlotConflict    = errors.New("slot already booked")
	ErrForbidden       = errors.New("actor not allowed")
	ErrInvalidState    = errors.New("booking is not pending")
	ErrPolicyViolation = errors.New("operation not allowed by resource policy")
	ErrNotFound        = errors.New("not found")
)

// Error kinds carried on the wire. The HTTP layer maps these to status
// codes; clients branch on the string, never on the message.
const (
	KindNoSchedule      = "NoSchedule"
	KindInvalidRange    = "InvalidRange"
	KindSlotConflict    = "SlotConflict"
	KindInvalidPeriod   = "InvalidPeriod"
	KindManagerRequired = "ManagerRequired"
	KindForbidden       = "Forbidden"
	KindInvalidState    = "InvalidState"
	KindPolicyViolation = "PolicyViolation"
	KindNotFound        = "NotFound"
)

// Kind classifies err into one of the wire kinds, or "" for errors that
// are none of the engine's business (storage failures and the like).
func Kind(err error) string {
	var ipe *schedulestore.InvalidPeriodError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSchedule):
		return KindNoSchedule
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrSlotConflict):
		return KindSlotConflict
	case errors.As(err, &ipe):
		return KindInvalidPeriod
	case errors.Is(err, resourcestore.ErrManagerRequired):
		return KindManagerRequired
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrPolicyViolation):
		return KindPolicyViolation
	case errors.Is(err, ErrNotFound),
		errors.Is(err, resourcestore.ErrNotFound),
		errors.Is(err, bookingstore.ErrNotFound):
		return KindNotFound
	}
	return ""
}
