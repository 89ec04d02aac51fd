// internal/app/features/deskcalc/routes.go
package deskcalc

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCalculator)
	return r
}
