// internal/app/features/errors/errorlog.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers report failures in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger builds an ErrorLogger over the given zap logger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

func (e *ErrorLogger) fields(r *http.Request, what string, err error) []zap.Field {
	return []zap.Field{
		zap.String("what", what),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}

// LogBadRequest logs the underlying error and renders a bad-request page
// with the user-facing message.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, what string, err error, userMsg, backURL string) {
	e.log.Warn("bad request", e.fields(r, what, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogNotFound logs the underlying error and renders a not-found page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, what string, err error, userMsg, backURL string) {
	e.log.Warn("not found", e.fields(r, what, err)...)
	RenderNotFound(w, r, userMsg, backURL)
}

// LogForbidden logs the underlying error and renders a forbidden page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, what string, err error, userMsg, backURL string) {
	e.log.Warn("forbidden", e.fields(r, what, err)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogServerError logs the underlying error and renders a server-error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, what string, err error, userMsg, backURL string) {
	e.log.Error("server error", e.fields(r, what, err)...)
	RenderServerError(w, r, userMsg, backURL)
}
