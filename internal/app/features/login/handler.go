// internal/app/features/login/handler.go
package login

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
	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/app/system/status"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the login flow.
type Handler struct {
	Users         *userstore.Store
	SessionMgr    *auth.SessionManager
	AuditLog      *auditlog.Logger
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger, googleEnabled bool) *Handler {
	return &Handler{
		Users:         users,
		SessionMgr:    sessionMgr,
		AuditLog:      auditLog,
		ErrLog:        errLog,
		Log:           logger,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := strings.TrimSpace(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", "/login")
		return
	}

	if u.Status == status.Disabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, u.ID)
		h.renderFormWithError(w, r, "This account is disabled.", email)
		return
	}

	if u.AuthMethod != "internal" || u.PasswordHash == "" {
		h.renderFormWithError(w, r, "This account signs in with Google. Use the Google button below.", email)
		return
	}

	if !authutil.CheckPassword(password, u.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID)
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	}

	h.completeLogin(w, r, u, returnURL)
}

// completeLogin writes the session cookie and sends the user on their way.
func (h *Handler) completeLogin(w http.ResponseWriter, r *http.Request, u *models.User, returnURL string) {
	sessionUser := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Username,
		Email: u.Email,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", u.Email)
		return
	}

	h.AuditLog.LoginSuccess(r.Context(), r, u.ID, normalize.AuthMethod(u.AuthMethod))

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Login", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}
