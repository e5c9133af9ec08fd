// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/reservehub/reservehub/internal/app/booking"
	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	bookingstore "github.com/reservehub/reservehub/internal/app/store/bookings"
	metricsstore "github.com/reservehub/reservehub/internal/app/store/metrics"
	orgstore "github.com/reservehub/reservehub/internal/app/store/organizations"
	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/clock"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the per-organization dashboard summary.
type Handler struct {
	Orgs      *orgstore.Store
	Resources *resourcestore.Store
	Bookings  *bookingstore.Store
	Metrics   *metricsstore.Store
	Engine    *booking.Engine
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

// NewHandler constructs a dashboard Handler bound to a DB and logger.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:      orgstore.New(db),
		Resources: resourcestore.New(db),
		Bookings:  bookingstore.New(db),
		Metrics:   metricsstore.New(db),
		Engine:    booking.New(db, logger),
		ErrLog:    errLog,
		Log:       logger,
	}
}

// ServeSummary handles GET /dashboard/summary. The today count comes
// from the sweeper-maintained metrics cache when it is fresh for the
// organization's current local date; otherwise it is recomputed live
// and the cache is refreshed on the way out.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.NotFound(w, "organization not found")
			return
		}
		h.ErrLog.ServerError(w, r, err, "failed to load organization")
		return
	}

	today := clock.Today(org.Location())

	todayCount, cached, err := h.todayCount(ctx, org.ID, today)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to compute today's bookings")
		return
	}

	resp := summaryResponse{
		OrganizationID: org.ID,
		Date:           today,
		TodayBookings:  todayCount,
		FromCache:      cached,
	}

	// Managers (and admins) also get their approval queue.
	if authz.HasAnyRole(r, authz.RoleManager, authz.RoleAdmin) {
		if actor, ok := dashboardActor(r); ok {
			pending, err := h.Engine.ListPendingForManager(ctx, org.ID, actor)
			if err != nil {
				h.ErrLog.ServerError(w, r, err, "failed to load pending approvals")
				return
			}
			resp.PendingApprovals = pending
			resp.PendingCount = len(pending)
		}
	}

	uierrors.JSON(w, http.StatusOK, resp)
}

// todayCount returns the number of active bookings today, preferring
// the cached metric when its date matches.
func (h *Handler) todayCount(ctx context.Context, orgID primitive.ObjectID, today string) (int64, bool, error) {
	m, ok, err := h.Metrics.Get(ctx, orgID, today)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return m.TodayBookings, true, nil
	}

	live, err := h.Resources.LiveIDSet(ctx, orgID)
	if err != nil {
		return 0, false, err
	}
	liveIDs := make([]primitive.ObjectID, 0, len(live))
	for id := range live {
		liveIDs = append(liveIDs, id)
	}
	count, err := h.Bookings.CountActiveOnDate(ctx, orgID, today, liveIDs)
	if err != nil {
		return 0, false, err
	}

	if err := h.Metrics.Put(ctx, orgID, today, count); err != nil {
		// Cache refresh failure is not worth failing the request over.
		h.Log.Warn("failed to refresh metrics cache",
			zap.String("organization_id", orgID.Hex()),
			zap.Error(err))
	}
	return count, false, nil
}

func dashboardActor(r *http.Request) (booking.Actor, bool) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		return booking.Actor{}, false
	}
	return booking.Actor{ID: userID, Name: name}, true
}
