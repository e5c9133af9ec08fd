// internal/app/features/resources/handler.go
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/store/audit"
	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	"github.com/reservehub/reservehub/internal/app/system/auditlog"
	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/htmlsanitize"
	"github.com/reservehub/reservehub/internal/app/system/normalize"
	"github.com/reservehub/reservehub/internal/app/system/sweeper"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for the resource catalog.
type Handler struct {
	Resources *resourcestore.Store
	Sweeper   *sweeper.Sweeper
	Storage   storage.Store
	AuditLog  *auditlog.Logger
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

// NewHandler constructs a resources Handler bound to a DB, file storage,
// and logger.
func NewHandler(db *mongo.Database, store storage.Store, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Resources: resourcestore.New(db),
		Sweeper:   sweeper.New(db, logger),
		Storage:   store,
		AuditLog:  auditLog,
		ErrLog:    errLog,
		Log:       logger,
	}
}

// ServeList handles GET /resources.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Resources.ListByOrg(ctx, orgID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to list resources")
		return
	}
	uierrors.JSON(w, http.StatusOK, listResponse{Resources: items})
}

// ServeView handles GET /resources/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	uierrors.JSON(w, http.StatusOK, res)
}

// HandleCreate handles POST /resources.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	managers, err := parseManagerIDs(req.ManagerIDs)
	if err != nil {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "manager_ids must be valid object ids")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	approval := req.ApprovalRequiredSet() && *req.ApprovalRequired
	res, err := h.Resources.Create(ctx, models.Resource{
		OrganizationID:   orgID,
		Name:             normalize.Name(req.Name),
		Location:         normalize.Name(req.Location),
		Description:      htmlsanitize.Sanitize(req.Description),
		ApprovalRequired: approval,
		ManagerIDs:       managers,
	})
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	h.Log.Info("resource created",
		zap.String("resource_id", res.ID.Hex()),
		zap.String("organization_id", orgID.Hex()),
		zap.Bool("approval_required", res.ApprovalRequired))
	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.AdminEvent(ctx, r, audit.EventResourceCreated, actorID, res.ID, &orgID)
	}
	uierrors.JSON(w, http.StatusCreated, res)
}

// HandleUpdate handles PATCH /resources/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	managers, err := parseManagerIDs(req.ManagerIDs)
	if err != nil {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "manager_ids must be valid object ids")
		return
	}

	mut := models.Resource{
		Name:        normalize.Name(req.Name),
		Location:    normalize.Name(req.Location),
		Description: htmlsanitize.Sanitize(req.Description),
		ManagerIDs:  managers,
	}
	if req.ApprovalRequiredSet() {
		mut.ApprovalRequired = *req.ApprovalRequired
	} else {
		mut.ApprovalRequired = res.ApprovalRequired
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Resources.Update(ctx, res.ID, mut); err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	updated, err := h.Resources.GetByID(ctx, res.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to reload resource")
		return
	}
	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.AdminEvent(ctx, r, audit.EventResourceUpdated, actorID, res.ID, &res.OrganizationID)
	}
	uierrors.JSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /resources/{id}.
//
// Deletion does not cascade to bookings in the same request; an
// immediate sweep of the organization runs right after, and the periodic
// sweeper catches anything this one misses.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Resources.Delete(ctx, res.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to delete resource")
		return
	}
	if deleted == 0 {
		uierrors.NotFound(w, "resource not found")
		return
	}

	if res.ImagePath != "" {
		if err := h.Storage.Delete(ctx, res.ImagePath); err != nil {
			h.Log.Warn("failed to delete resource image",
				zap.String("path", res.ImagePath),
				zap.Error(err))
		}
	}

	sweepCtx, sweepCancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer sweepCancel()
	if _, err := h.Sweeper.Reconcile(sweepCtx, res.OrganizationID); err != nil {
		h.Log.Warn("post-delete sweep failed",
			zap.String("organization_id", res.OrganizationID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("resource deleted", zap.String("resource_id", res.ID.Hex()))
	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.AdminEvent(ctx, r, audit.EventResourceDeleted, actorID, res.ID, &res.OrganizationID)
	}
	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleSwapOrder handles POST /resources/{id}/swap-order.
func (h *Handler) HandleSwapOrder(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	var req swapOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	otherID, err := primitive.ObjectIDFromHex(req.OtherID)
	if err != nil {
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", "other_id must be a valid object id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	other, err := h.Resources.GetByID(ctx, otherID)
	if err != nil || other.OrganizationID != res.OrganizationID {
		uierrors.NotFound(w, "resource not found")
		return
	}

	if err := h.Resources.SwapOrder(ctx, res.ID, otherID); err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to swap display order")
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "swapped"})
}

// loadScoped resolves {id}, loads the resource, and checks it belongs to
// the caller's organization. Writes the error response on failure.
func (h *Handler) loadScoped(w http.ResponseWriter, r *http.Request) (models.Resource, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "resource not found")
		return models.Resource{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourcestore.ErrNotFound) {
			uierrors.NotFound(w, "resource not found")
			return models.Resource{}, false
		}
		h.ErrLog.ServerError(w, r, err, "failed to load resource")
		return models.Resource{}, false
	}
	if orgID := authz.RequestOrgID(r); res.OrganizationID != orgID {
		uierrors.NotFound(w, "resource not found")
		return models.Resource{}, false
	}
	return res, true
}

func (h *Handler) writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, resourcestore.ErrManagerRequired):
		uierrors.Write(w, http.StatusUnprocessableEntity, "ManagerRequired", err.Error())
	case errors.Is(err, resourcestore.ErrInvalid):
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", err.Error())
	case errors.Is(err, resourcestore.ErrNotFound):
		uierrors.NotFound(w, "resource not found")
	default:
		h.ErrLog.ServerError(w, r, err, "failed to save resource")
	}
}

func parseManagerIDs(raw []string) ([]primitive.ObjectID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
