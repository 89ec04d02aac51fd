// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

func basePageData(r *http.Request, title, msg, backURL, backDefault string) pageData {
	u, signed := auth.CurrentUser(r)
	name := ""
	if signed && u != nil {
		name = u.Name
	}
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, backDefault)
	}
	return pageData{
		Title:      title,
		IsLoggedIn: signed,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	}
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_page",
		basePageData(r, "Sign in required", "Please sign in to continue.", backURL, "/login"))
}

// RenderForbidden shows a friendly access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page",
		basePageData(r, "Access denied", msg, backURL, "/"))
}

// RenderBadRequest shows a friendly invalid-input page.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_page",
		basePageData(r, "Something's not right", msg, backURL, "/"))
}

// RenderNotFound shows a friendly not-found page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page",
		basePageData(r, "Not found", msg, backURL, "/"))
}

// RenderServerError shows a friendly server-error page.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page",
		basePageData(r, "Server error", msg, backURL, "/"))
}
