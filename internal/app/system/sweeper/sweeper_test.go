package sweeper_test

import (
	"testing"
	"time"

	bookingstore "github.com/reservehub/reservehub/internal/app/store/bookings"
	metricsstore "github.com/reservehub/reservehub/internal/app/store/metrics"
	"github.com/reservehub/reservehub/internal/app/system/sweeper"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/reservehub/reservehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestSweeper_Reconcile_DeletesOrphans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	sw := sweeper.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Lincoln High")
	owner := fx.CreateMember(ctx, "Pat Jones", "pat@test.com", org.ID)
	room := fx.CreateResource(ctx, org.ID, "Room 101", false)

	kept := fx.CreateBooking(ctx, org.ID, room.ID, owner.ID,
		"2026-09-07", "09:00", "09:40", models.BookingApproved)
	orphan := fx.CreateBooking(ctx, org.ID, primitive.NewObjectID(), owner.ID,
		"2026-09-07", "10:00", "10:40", models.BookingApproved)

	rep, err := sw.Reconcile(ctx, org.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rep.OrphansDeleted != 1 {
		t.Errorf("orphans deleted: got %d, want 1", rep.OrphansDeleted)
	}

	bookings := bookingstore.New(db)
	if _, err := bookings.GetByID(ctx, kept.ID); err != nil {
		t.Errorf("booking on live resource should survive the sweep: %v", err)
	}
	if _, err := bookings.GetByID(ctx, orphan.ID); err == nil {
		t.Error("orphaned booking should have been deleted")
	}

	// A second pass over the already-clean org finds nothing to delete.
	rep, err = sw.Reconcile(ctx, org.ID)
	if err != nil {
		t.Fatalf("second Reconcile failed: %v", err)
	}
	if rep.OrphansDeleted != 0 {
		t.Errorf("orphans deleted on repeat pass: got %d, want 0", rep.OrphansDeleted)
	}
	if _, err := bookings.GetByID(ctx, kept.ID); err != nil {
		t.Errorf("live booking should survive repeat passes: %v", err)
	}
}

func TestSweeper_Reconcile_RefreshesMetrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	sw := sweeper.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Lincoln High")
	owner := fx.CreateMember(ctx, "Pat Jones", "pat@test.com", org.ID)
	room := fx.CreateResource(ctx, org.ID, "Room 101", false)

	today := time.Now().In(org.Location()).Format("2006-01-02")

	// Two active today, one rejected today, one active on another date.
	fx.CreateBooking(ctx, org.ID, room.ID, owner.ID, today, "09:00", "09:40", models.BookingApproved)
	fx.CreateBooking(ctx, org.ID, room.ID, owner.ID, today, "10:40", "11:20", models.BookingPending)
	fx.CreateBooking(ctx, org.ID, room.ID, owner.ID, today, "11:30", "12:10", models.BookingRejected)
	fx.CreateBooking(ctx, org.ID, room.ID, owner.ID, "2030-01-02", "09:00", "09:40", models.BookingApproved)

	rep, err := sw.Reconcile(ctx, org.ID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rep.TodayBookings != 2 {
		t.Errorf("today bookings: got %d, want 2", rep.TodayBookings)
	}

	m, found, err := metricsstore.New(db).Get(ctx, org.ID, today)
	if err != nil {
		t.Fatalf("metrics Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected cached metrics after sweep")
	}
	if m.TodayBookings != 2 {
		t.Errorf("cached today bookings: got %d, want 2", m.TodayBookings)
	}
}

func TestSweeper_ReconcileAll_SkipsFailingOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	sw := sweeper.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateOrganization(ctx, "Alpha High")
	b := fx.CreateOrganization(ctx, "Beta High")
	owner := fx.CreateMember(ctx, "Pat Jones", "pat@test.com", a.ID)

	fx.CreateBooking(ctx, a.ID, primitive.NewObjectID(), owner.ID,
		"2026-09-07", "09:00", "09:40", models.BookingApproved)
	fx.CreateBooking(ctx, b.ID, primitive.NewObjectID(), owner.ID,
		"2026-09-07", "09:00", "09:40", models.BookingApproved)

	if err := sw.ReconcileAll(ctx); err != nil {
		t.Fatalf("ReconcileAll failed: %v", err)
	}

	bookings := bookingstore.New(db)
	for _, org := range []primitive.ObjectID{a.ID, b.ID} {
		left, err := bookings.ListByOrg(ctx, org)
		if err != nil {
			t.Fatalf("ListByOrg failed: %v", err)
		}
		if len(left) != 0 {
			t.Errorf("org %s: expected all orphans swept, %d left", org.Hex(), len(left))
		}
	}
}
