// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/store/oauthstate"
	userstore "github.com/reservehub/reservehub/internal/app/store/users"
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"github.com/reservehub/reservehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	StateStore *oauthstate.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://reservehub.example.com/auth/google/callback"
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        userstore.New(db),
		StateStore:   oauthstate.New(db),
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google.
// Initiates the flow by redirecting to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		uierrors.Write(w, http.StatusServiceUnavailable, "Unavailable", "google sign-in is not configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to generate OAuth state")
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Put(ctx, state, returnURL, 10*time.Minute); err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to save OAuth state")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback.
// Exchanges the code for a token, fetches the Google profile, upserts
// the member account, and creates the session.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		uierrors.Write(w, http.StatusUnauthorized, "Unauthorized", "google sign-in was denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		uierrors.BadRequest(w, "missing state parameter")
		return
	}

	shortCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	stored, err := h.StateStore.Consume(shortCtx, state)
	if err != nil {
		if errors.Is(err, oauthstate.ErrStateNotFound) {
			h.Log.Warn("invalid or expired OAuth state")
			uierrors.Write(w, http.StatusUnauthorized, "Unauthorized", "sign-in attempt expired, try again")
			return
		}
		h.ErrLog.ServerError(w, r, err, "failed to validate OAuth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		uierrors.BadRequest(w, "missing code parameter")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to exchange OAuth code")
		return
	}

	info, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to fetch Google user info")
		return
	}
	if !info.EmailVerified {
		h.Log.Warn("Google account email not verified", zap.String("email", info.Email))
		uierrors.Write(w, http.StatusUnauthorized, "Unauthorized", "google account email is not verified")
		return
	}

	user, err := h.Users.UpsertGoogleUser(shortCtx, info.Email, info.Name)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "failed to upsert Google user")
		return
	}

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

	h.Log.Info("user signed in via Google", zap.String("user_id", su.ID))

	dest := stored.ReturnURL
	if dest == "" || dest[0] != '/' {
		dest = "/"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState returns a cryptographically random URL-safe state token.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
