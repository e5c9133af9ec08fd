// internal/app/features/bookings/handler.go
package bookings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/reservehub/reservehub/internal/app/booking"
	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/store/audit"
	"github.com/reservehub/reservehub/internal/app/system/auditlog"
	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/csvutil"
	"github.com/reservehub/reservehub/internal/app/system/normalize"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler exposes the booking engine over HTTP. All decisions about who
// may do what to a booking live in the engine; this layer only parses,
// scopes to the caller's organization, and translates engine errors to
// status codes.
type Handler struct {
	Engine   *booking.Engine
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs a bookings Handler bound to a DB and logger.
func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:   booking.New(db, logger),
		AuditLog: auditLog,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// HandleRequest handles POST /bookings.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}

	var req requestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	resourceID, err := primitive.ObjectIDFromHex(req.ResourceID)
	if err != nil {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "resource_id must be a valid object id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.Engine.Request(ctx, booking.RequestInput{
		OrganizationID: orgID,
		ResourceID:     resourceID,
		Date:           req.Date,
		StartPeriod:    req.StartPeriod,
		EndPeriod:      req.EndPeriod,
		Purpose:        req.Purpose,
	}, actor)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.Log.Info("booking requested",
		zap.String("booking_id", b.ID.Hex()),
		zap.String("resource_id", resourceID.Hex()),
		zap.String("date", b.Date),
		zap.String("status", b.Status))
	h.AuditLog.BookingEvent(ctx, r, audit.EventBookingRequested, actor.ID, b.ID, orgID)
	uierrors.JSON(w, http.StatusCreated, b)
}

// ServeList handles GET /bookings. Two query shapes are served:
// ?resource_id=&date= for one resource's day, and ?from=&to= for an
// organization-wide date range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if raw := normalize.QueryParam(r, "resource_id"); raw != "" {
		resourceID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "resource_id must be a valid object id")
			return
		}
		items, err := h.Engine.ListForResourceDate(ctx, resourceID, normalize.QueryParam(r, "date"))
		if err != nil {
			h.writeEngineError(w, r, err)
			return
		}
		uierrors.JSON(w, http.StatusOK, listResponse{Bookings: items})
		return
	}

	from := normalize.QueryParam(r, "from")
	to := normalize.QueryParam(r, "to")
	if from == "" || to == "" {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "provide resource_id and date, or from and to")
		return
	}
	items, err := h.Engine.ListForOrgDateRange(ctx, orgID, from, to)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, listResponse{Bookings: items})
}

// ServeExport handles GET /bookings/export: the organization's bookings
// over ?from=&to= as a CSV download.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	from := normalize.QueryParam(r, "from")
	to := normalize.QueryParam(r, "to")
	if from == "" || to == "" {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "from and to are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	items, err := h.Engine.ListForOrgDateRange(ctx, orgID, from, to)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings_`+from+`_`+to+`.csv"`)
	if err := csvutil.WriteBookings(w, items); err != nil {
		// Headers are already out; all we can do is log.
		h.Log.Error("csv export write failed", zap.Error(err))
	}
}

// ServeMine handles GET /bookings/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Engine.ListForOwner(ctx, orgID, actor)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, listResponse{Bookings: items})
}

// ServePending handles GET /bookings/pending: the approval queue for
// resources the caller manages.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Engine.ListPendingForManager(ctx, orgID, actor)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, listResponse{Bookings: items})
}

// ServeView handles GET /bookings/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Engine.Get(ctx, id)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	if b.OrganizationID != orgID {
		uierrors.NotFound(w, "booking not found")
		return
	}
	uierrors.JSON(w, http.StatusOK, b)
}

// HandleApprove handles POST /bookings/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Engine.Approve, "booking approved", audit.EventBookingApproved)
}

// HandleReject handles POST /bookings/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.Engine.Reject, "booking rejected", audit.EventBookingRejected)
}

func (h *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, primitive.ObjectID, booking.Actor) (models.Booking, error),
	logMsg, eventType string,
) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := op(ctx, id, actor)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.Log.Info(logMsg,
		zap.String("booking_id", b.ID.Hex()),
		zap.String("actor_id", actor.ID.Hex()))
	h.AuditLog.BookingEvent(ctx, r, eventType, actor.ID, b.ID, b.OrganizationID)
	uierrors.JSON(w, http.StatusOK, b)
}

// HandleDuplicate handles POST /bookings/{id}/duplicate.
func (h *Handler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dup, err := h.Engine.DuplicateToNextWeek(ctx, id, actor)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.Log.Info("booking duplicated",
		zap.String("source_id", id.Hex()),
		zap.String("booking_id", dup.ID.Hex()),
		zap.String("date", dup.Date))
	h.AuditLog.BookingEvent(ctx, r, audit.EventBookingDuplicated, actor.ID, dup.ID, dup.OrganizationID)
	uierrors.JSON(w, http.StatusCreated, dup)
}

// HandleUpdatePurpose handles PATCH /bookings/{id}.
func (h *Handler) HandleUpdatePurpose(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	var req updatePurposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Engine.UpdatePurpose(ctx, id, req.Purpose, actor); err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	b, err := h.Engine.Get(ctx, id)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, b)
}

// HandleCancel handles DELETE /bookings/{id}.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(r)
	if !ok {
		uierrors.Forbidden(w, "sign in required")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Loaded before the delete so the audit trail keeps the organization.
	b, err := h.Engine.Get(ctx, id)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	if err := h.Engine.Cancel(ctx, id, actor); err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.Log.Info("booking cancelled",
		zap.String("booking_id", id.Hex()),
		zap.String("actor_id", actor.ID.Hex()))
	h.AuditLog.BookingEvent(ctx, r, audit.EventBookingCancelled, actor.ID, id, b.OrganizationID)
	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// writeEngineError maps engine error kinds onto HTTP statuses. Unknown
// kinds are storage or infrastructure failures and surface as 500.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	kind := booking.Kind(err)
	switch kind {
	case booking.KindNotFound:
		uierrors.Write(w, http.StatusNotFound, kind, "booking or resource not found")
	case booking.KindForbidden:
		uierrors.Write(w, http.StatusForbidden, kind, err.Error())
	case booking.KindSlotConflict, booking.KindInvalidState:
		uierrors.Write(w, http.StatusConflict, kind, err.Error())
	case booking.KindInvalidRange, booking.KindInvalidPeriod,
		booking.KindManagerRequired, booking.KindPolicyViolation,
		booking.KindNoSchedule:
		uierrors.Write(w, http.StatusUnprocessableEntity, kind, err.Error())
	default:
		h.ErrLog.ServerError(w, r, err, "booking operation failed")
	}
}

// requestActor builds the engine actor from the signed-in user.
func requestActor(r *http.Request) (booking.Actor, bool) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		return booking.Actor{}, false
	}
	return booking.Actor{ID: userID, Name: name}, true
}

func bookingID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "booking not found")
		return primitive.NilObjectID, false
	}
	return id, true
}
