// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		// Cookie clearing failed server-side; the client should still
		// treat itself as signed out.
		h.Log.Error("logout: clear session", zap.Error(err))
	}
	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
