// internal/app/features/schedule/routes.go
package schedule

import (
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the schedule template routes (typically "/schedule").
// Everyone signed in can read the template; only admins replace it.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeTemplate)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))
		pr.Put("/", h.HandleSaveTemplate)
	})

	return r
}
