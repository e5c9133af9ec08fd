// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/reservehub/reservehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present or the session's user ID is malformed,
// it returns "visitor", "", NilObjectID, false — ok=true always means a
// valid, authenticated user with a parseable ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleAdmin
}

// HasAnyRole reports whether the current request's user has any of the
// given roles. Returns false if not signed in.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// RequestOrgID resolves the organization a request operates on. Admins
// may target any tenant with ?org_id=; everyone else is pinned to their
// own organization. Returns NilObjectID when no organization applies.
func RequestOrgID(r *http.Request) primitive.ObjectID {
	if IsAdmin(r) {
		if raw := r.URL.Query().Get("org_id"); raw != "" {
			if id, err := primitive.ObjectIDFromHex(raw); err == nil {
				return id
			}
			return primitive.NilObjectID
		}
	}
	return UserOrgID(r)
}

// UserOrgID returns the current user's organization ID.
// Returns NilObjectID if not signed in or not scoped to an organization.
func UserOrgID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.OrganizationID == "" {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(user.OrganizationID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
