// internal/app/features/bookings/routes.go
package bookings

import (
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the booking routes (typically "/bookings"). Everything
// requires sign-in; finer-grained decisions (owner, manager) belong to
// the engine.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleRequest)
		pr.Get("/mine", h.ServeMine)
		pr.Get("/pending", h.ServePending)
		pr.Get("/export", h.ServeExport)
		pr.Get("/{id}", h.ServeView)
		pr.Patch("/{id}", h.HandleUpdatePurpose)
		pr.Delete("/{id}", h.HandleCancel)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
		pr.Post("/{id}/duplicate", h.HandleDuplicate)
	})

	return r
}
