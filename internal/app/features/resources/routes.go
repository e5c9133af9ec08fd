// internal/app/features/resources/routes.go
package resources

import (
	"github.com/reservehub/reservehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the resource catalog routes (typically "/resources").
// Everyone signed in can browse the catalog; mutations are admin-only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeView)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/swap-order", h.HandleSwapOrder)
		pr.Post("/{id}/image", h.HandleUploadImage)
	})

	return r
}
