// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	userstore "github.com/reservehub/reservehub/internal/app/store/users"
	"github.com/reservehub/reservehub/internal/app/system/auditlog"
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"github.com/reservehub/reservehub/internal/app/system/normalize"
	"github.com/reservehub/reservehub/internal/app/system/ratelimit"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler signs users in with email and password.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

// NewHandler constructs a login Handler bound to the user store.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Limiter:    ratelimit.NewLoginLimiter(),
		AuditLog:   audit,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
}

// HandleLogin handles POST /login.
//
// Bad credentials, unknown emails, and disabled accounts all return the
// same 401 so the endpoint cannot be used to probe for accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		uierrors.BadRequest(w, "email and password are required")
		return
	}

	if allowed, reason := h.Limiter.Check(r, email); !allowed {
		h.AuditLog.LoginRateLimited(r.Context(), r, email, reason)
		uierrors.Write(w, http.StatusTooManyRequests, "RateLimited", reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.Authenticate(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrInvalidCredentials) {
			h.Log.Info("login failed", zap.String("email", email))
			h.AuditLog.LoginFailed(ctx, r, email)
			uierrors.Write(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
			return
		}
		h.ErrLog.ServerError(w, r, err, "login lookup failed")
		return
	}
	h.Limiter.ResetEmail(email)

	su := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.OrganizationID != nil {
		su.OrganizationID = user.OrganizationID.Hex()
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.ServerError(w, r, err, "session creation failed")
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", su.ID),
		zap.String("role", su.Role))
	h.AuditLog.LoginSuccess(ctx, r, user.ID, user.OrganizationID, email)

	uierrors.JSON(w, http.StatusOK, loginResponse{
		ID:             su.ID,
		Name:           su.Name,
		Email:          su.Email,
		Role:           su.Role,
		OrganizationID: su.OrganizationID,
	})
}
