// internal/app/features/schedule/handler.go
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	schedulestore "github.com/reservehub/reservehub/internal/app/store/schedules"
	"github.com/reservehub/reservehub/internal/app/system/authz"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the organization's schedule template: the ordered
// period list every booking snaps to.
type Handler struct {
	Schedules *schedulestore.Store
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

// NewHandler constructs a schedule Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Schedules: schedulestore.New(db),
		ErrLog:    errLog,
		Log:       logger,
	}
}

type templateResponse struct {
	Periods []models.Period `json:"periods"`
}

type templateRequest struct {
	Periods []models.Period `json:"periods"`
}

// ServeTemplate handles GET /schedule.
// A missing template returns an empty period list, not an error.
func (h *Handler) ServeTemplate(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	periods, err := h.Schedules.Get(ctx, orgID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to load schedule template")
		return
	}
	if periods == nil {
		periods = []models.Period{}
	}
	uierrors.JSON(w, http.StatusOK, templateResponse{Periods: periods})
}

// HandleSaveTemplate handles PUT /schedule.
// The submitted period list replaces the stored template wholesale.
func (h *Handler) HandleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	orgID := authz.RequestOrgID(r)
	if orgID.IsZero() {
		uierrors.Forbidden(w, "no organization in scope")
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Schedules.Save(ctx, orgID, req.Periods); err != nil {
		var ipe *schedulestore.InvalidPeriodError
		if errors.As(err, &ipe) {
			uierrors.Write(w, http.StatusUnprocessableEntity, "InvalidPeriod", err.Error())
			return
		}
		h.ErrLog.ServerError(w, r, err, "failed to save schedule template")
		return
	}

	h.Log.Info("schedule template saved",
		zap.String("organization_id", orgID.Hex()),
		zap.Int("periods", len(req.Periods)))

	periods, err := h.Schedules.Get(ctx, orgID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to reload schedule template")
		return
	}
	uierrors.JSON(w, http.StatusOK, templateResponse{Periods: periods})
}
