// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.ServeSettings)
		r.Post("/username", h.HandleChangeUsername)
		r.Post("/delete", h.HandleDeleteAccount)
	})

	return r
}
