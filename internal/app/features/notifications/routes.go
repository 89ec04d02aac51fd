// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeInbox)
		pr.Get("/count", h.ServeCount)
		pr.Post("/{notificationID}/accept", h.HandleAccept)
		pr.Post("/{notificationID}/reject", h.HandleReject)
	})

	return r
}
