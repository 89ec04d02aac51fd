// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
		pr.Post("/start", h.HandleStart)
		pr.Post("/stop", h.HandleStop)
	})

	return r
}
