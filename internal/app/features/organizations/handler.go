// internal/app/features/organizations/handler.go
package organizations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/store/audit"
	orgstore "github.com/reservehub/reservehub/internal/app/store/organizations"
	"github.com/reservehub/reservehub/internal/app/system/auditlog"
	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/normalize"
	"github.com/reservehub/reservehub/internal/app/system/paging"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for tenant administration.
type Handler struct {
	Orgs     *orgstore.Store
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an Organizations handler bound to a DB and logger.
func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:     orgstore.New(db),
		AuditLog: auditLog,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// ServeList handles GET /organizations. Supports ?q= name-prefix search
// and keyset cursors via ?before= / ?after=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(r, "q")
	before := normalize.QueryParam(r, "before")
	after := normalize.QueryParam(r, "after")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs, page, err := h.Orgs.ListPage(ctx, q, before, after)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to list organizations")
		return
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}

	resp := listResponse{
		Organizations: orgs,
		HasPrev:       page.HasPrev,
		HasNext:       page.HasNext,
	}
	if len(orgs) > 0 {
		resp.PrevCursor, resp.NextCursor = paging.BuildCursors(orgs,
			func(o models.Organization) string { return o.NameCI },
			func(o models.Organization) primitive.ObjectID { return o.ID })
	}
	uierrors.JSON(w, http.StatusOK, resp)
}

// ServeView handles GET /organizations/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "organization not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.NotFound(w, "organization not found")
			return
		}
		h.ErrLog.ServerError(w, r, err, "failed to load organization")
		return
	}
	uierrors.JSON(w, http.StatusOK, org)
}

// HandleCreate handles POST /organizations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.Create(ctx, models.Organization{
		Name:        normalize.Name(req.Name),
		TimeZone:    req.TimeZone,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	h.Log.Info("organization created",
		zap.String("organization_id", org.ID.Hex()),
		zap.String("name", org.Name))
	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.AdminEvent(ctx, r, audit.EventOrgCreated, actorID, org.ID, &org.ID)
	}
	uierrors.JSON(w, http.StatusCreated, org)
}

// HandleUpdate handles PATCH /organizations/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "organization not found")
		return
	}
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Orgs.Update(ctx, id, models.Organization{
		Name:        normalize.Name(req.Name),
		TimeZone:    req.TimeZone,
		ContactInfo: req.ContactInfo,
		Status:      normalize.Status(req.Status),
	})
	if err != nil {
		h.writeSaveError(w, r, err)
		return
	}

	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to reload organization")
		return
	}
	if _, _, actorID, ok := authz.UserCtx(r); ok {
		h.AuditLog.AdminEvent(ctx, r, audit.EventOrgUpdated, actorID, org.ID, &org.ID)
	}
	uierrors.JSON(w, http.StatusOK, org)
}

func (h *Handler) writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orgstore.ErrDuplicateOrganization):
		uierrors.Write(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, orgstore.ErrInvalid):
		uierrors.Write(w, http.StatusUnprocessableEntity, "Invalid", err.Error())
	default:
		h.ErrLog.ServerError(w, r, err, "failed to save organization")
	}
}
