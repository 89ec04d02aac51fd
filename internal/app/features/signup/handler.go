// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auditlog"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/authutil"
	"github.com/dalemusser/standhub/internal/app/system/inputval"
	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies for account creation.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		AuditLog:   auditLog,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	Username      string
	Email         string
	PasswordRules string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign Up", "/"),
		PasswordRules: authutil.PasswordRules(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/signup")
		return
	}

	username := normalize.Username(r.FormValue("username"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if username == "" || email == "" {
		h.renderFormWithError(w, r, "Username and email are required.", username, email)
		return
	}
	if inputval.LooksLikeEmail(username) {
		h.renderFormWithError(w, r, "Usernames can't look like an email address.", username, email)
		return
	}
	if !inputval.IsValidEmail(email) {
		h.renderFormWithError(w, r, "That email address doesn't look valid.", username, email)
		return
	}
	if password != confirm {
		h.renderFormWithError(w, r, "Passwords do not match.", username, email)
		return
	}
	if err := authutil.ValidatePassword(password); err != nil {
		h.renderFormWithError(w, r, err.Error(), username, email)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "A server error occurred.", "/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		AuthMethod:   "internal",
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.renderFormWithError(w, r, "An account with that email already exists. Try signing in instead.", username, email)
		return
	case errors.Is(err, userstore.ErrDuplicateUsername):
		h.renderFormWithError(w, r, "That username is taken. Please choose another.", username, email)
		return
	case errors.Is(err, userstore.ErrUsernameLooksLikeEmail):
		h.renderFormWithError(w, r, "Usernames can't look like an email address.", username, email)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB create user", err, "A server error occurred.", "/signup")
		return
	}

	h.AuditLog.Signup(r.Context(), r, u.ID, u.AuthMethod, u.Email)

	// Sign the new account in right away.
	sessionUser := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Username,
		Email: u.Email,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		// Account exists; just send them to the login page.
		h.Log.Error("signup: save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username, email string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign Up", "/"),
		Error:         msg,
		Username:      strings.TrimSpace(username),
		Email:         strings.TrimSpace(email),
		PasswordRules: authutil.PasswordRules(),
	})
}
