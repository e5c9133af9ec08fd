// internal/app/system/csvutil/bookings.go
package csvutil

import (
	"encoding/csv"
	"io"

	"github.com/reservehub/reservehub/internal/domain/models"
)

// MaxExportRows caps a single CSV export. Callers should reject wider
// date ranges rather than stream unbounded result sets.
const MaxExportRows = 20000

var bookingHeader = []string{
	"booking_id", "resource_id", "owner_name", "date", "start_time", "end_time", "status", "purpose",
}

// WriteBookings writes bookings as CSV with a header row. Rows past
// MaxExportRows are dropped silently; the caller's range limit should
// make that unreachable.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bookingHeader); err != nil {
		return err
	}
	for i, b := range bookings {
		if i >= MaxExportRows {
			break
		}
		row := []string{
			b.ID.Hex(),
			b.ResourceID.Hex(),
			b.OwnerName,
			b.Date,
			b.StartTime,
			b.EndTime,
			b.Status,
			b.Purpose,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
