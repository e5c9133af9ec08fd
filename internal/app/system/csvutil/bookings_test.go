package csvutil

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWriteBookings(t *testing.T) {
	bookings := []models.Booking{
		{
			ID:         primitive.NewObjectID(),
			ResourceID: primitive.NewObjectID(),
			OwnerName:  "Sam Ortiz",
			Date:       "2026-09-07",
			StartTime:  "09:00",
			EndTime:    "09:40",
			Status:     models.BookingApproved,
			Purpose:    "Robotics club, \"final\" build",
		},
		{
			ID:         primitive.NewObjectID(),
			ResourceID: primitive.NewObjectID(),
			OwnerName:  "Dana Reyes",
			Date:       "2026-09-08",
			StartTime:  "10:40",
			EndTime:    "11:20",
			Status:     models.BookingPending,
		},
	}

	var buf bytes.Buffer
	if err := WriteBookings(&buf, bookings); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(records))
	}
	if records[0][0] != "booking_id" || records[0][7] != "purpose" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][2] != "Sam Ortiz" {
		t.Errorf("owner_name: got %q", records[1][2])
	}
	// Embedded quotes and commas must round-trip.
	if records[1][7] != `Robotics club, "final" build` {
		t.Errorf("purpose: got %q", records[1][7])
	}
	if records[2][6] != models.BookingPending {
		t.Errorf("status: got %q", records[2][6])
	}
}

func TestWriteBookings_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBookings(&buf, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	lines := strings.Count(strings.TrimRight(buf.String(), "\n"), "\n") + 1
	if lines != 1 {
		t.Errorf("expected only a header line, got %d lines", lines)
	}
}
