// internal/app/system/sweeper/sweeper.go
//
// Package sweeper reconciles bookings against the resource catalog and
// refreshes per-organization dashboard metrics. Resource deletion does
// not cascade, so bookings can briefly reference a deleted resource;
// the sweep removes those orphans on its next pass.
package sweeper

import (
	"context"
	"fmt"

	bookingstore "github.com/reservehub/reservehub/internal/app/store/bookings"
	metricsstore "github.com/reservehub/reservehub/internal/app/store/metrics"
	orgstore "github.com/reservehub/reservehub/internal/app/store/organizations"
	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	"github.com/reservehub/reservehub/internal/app/system/clock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Report summarizes one organization's sweep.
type Report struct {
	OrganizationID primitive.ObjectID
	OrphansDeleted int
	TodayBookings  int64
}

// Sweeper holds the stores a sweep touches.
type Sweeper struct {
	orgs      *orgstore.Store
	resources *resourcestore.Store
	bookings  *bookingstore.Store
	metrics   *metricsstore.Store
	log       *zap.Logger
}

// New builds a Sweeper over the shared database handle.
func New(db *mongo.Database, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		orgs:      orgstore.New(db),
		resources: resourcestore.New(db),
		bookings:  bookingstore.New(db),
		metrics:   metricsstore.New(db),
		log:       logger,
	}
}

// Reconcile sweeps one organization: deletes bookings whose resource no
// longer exists, then recomputes and caches today's booking count in the
// organization's time zone.
//
// Deletion failures are logged and skipped rather than aborting the
// sweep; a missed orphan is picked up on the next pass.
func (s *Sweeper) Reconcile(ctx context.Context, orgID primitive.ObjectID) (Report, error) {
	rep := Report{OrganizationID: orgID}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return rep, fmt.Errorf("load organization: %w", err)
	}

	// One snapshot of live resource IDs for the whole pass. A resource
	// created after this point has no bookings older than the snapshot,
	// so it cannot be swept by mistake.
	live, err := s.resources.LiveIDSet(ctx, orgID)
	if err != nil {
		return rep, fmt.Errorf("load resource ids: %w", err)
	}

	all, err := s.bookings.ListByOrg(ctx, orgID)
	if err != nil {
		return rep, fmt.Errorf("list bookings: %w", err)
	}

	for _, b := range all {
		if _, ok := live[b.ResourceID]; ok {
			continue
		}
		if err := s.bookings.Delete(ctx, b.ID); err != nil {
			s.log.Warn("failed to delete orphaned booking",
				zap.String("booking_id", b.ID.Hex()),
				zap.String("resource_id", b.ResourceID.Hex()),
				zap.Error(err))
			continue
		}
		rep.OrphansDeleted++
	}

	today := clock.Today(org.Location())
	liveIDs := make([]primitive.ObjectID, 0, len(live))
	for id := range live {
		liveIDs = append(liveIDs, id)
	}
	count, err := s.bookings.CountActiveOnDate(ctx, orgID, today, liveIDs)
	if err != nil {
		return rep, fmt.Errorf("count today's bookings: %w", err)
	}
	rep.TodayBookings = count

	if err := s.metrics.Put(ctx, orgID, today, count); err != nil {
		return rep, fmt.Errorf("store metrics: %w", err)
	}

	if rep.OrphansDeleted > 0 {
		s.log.Info("swept orphaned bookings",
			zap.String("organization_id", orgID.Hex()),
			zap.Int("deleted", rep.OrphansDeleted))
	}
	return rep, nil
}

// ReconcileAll sweeps every organization. A failing organization is
// logged and skipped so one bad tenant cannot starve the rest.
func (s *Sweeper) ReconcileAll(ctx context.Context) error {
	ids, err := s.orgs.IDs(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	for _, id := range ids {
		if _, err := s.Reconcile(ctx, id); err != nil {
			s.log.Error("organization sweep failed",
				zap.String("organization_id", id.Hex()),
				zap.Error(err))
		}
	}
	return nil
}
