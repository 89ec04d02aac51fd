// internal/app/features/teams/routes.go
package teams

import (
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeCreateForm)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{teamID}", h.ServeTeam)
		pr.Post("/{teamID}/join", h.HandleJoin)
	})

	return r
}
