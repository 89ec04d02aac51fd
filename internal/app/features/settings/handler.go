// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	"github.com/dalemusser/standhub/internal/app/membership"
	joinrequeststore "github.com/dalemusser/standhub/internal/app/store/joinrequests"
	notificationstore "github.com/dalemusser/standhub/internal/app/store/notifications"
	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auditlog"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/authutil"
	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrReauthFailed is returned when the password check before account
// deletion does not pass.
var ErrReauthFailed = errors.New("password re-authentication failed")

// Handler serves account settings: username changes and account deletion.
type Handler struct {
	Users       *userstore.Store
	Standing    *standingstore.Store
	Notifs      *notificationstore.Store
	Requests    *joinrequeststore.Store
	Coordinator *membership.Coordinator
	SessionMgr  *auth.SessionManager
	AuditLog    *auditlog.Logger
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	standing *standingstore.Store,
	notifs *notificationstore.Store,
	requests *joinrequeststore.Store,
	coordinator *membership.Coordinator,
	sessionMgr *auth.SessionManager,
	auditLog *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:       users,
		Standing:    standing,
		Notifs:      notifs,
		Requests:    requests,
		Coordinator: coordinator,
		SessionMgr:  sessionMgr,
		AuditLog:    auditLog,
		ErrLog:      errLog,
		Log:         logger,
	}
}

type pageData struct {
	viewdata.BaseVM
	Error       string
	Notice      string
	Username    string
	Email       string
	HasPassword bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /settings                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, "", "")
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, errMsg, notice string) {
	user, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := pageData{
		BaseVM:   viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		Error:    errMsg,
		Notice:   notice,
		Username: user.Name,
		Email:    user.Email,
	}
	if u, err := h.Users.GetByID(ctx, userID); err == nil {
		data.Username = u.Username
		data.HasPassword = u.PasswordHash != ""
	}

	templates.Render(w, r, "settings", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /settings/username                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleChangeUsername(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	newName := normalize.Username(r.FormValue("username"))
	if newName == "" {
		h.renderSettings(w, r, "Please enter a username.", "")
		return
	}
	if newName == user.Name {
		h.renderSettings(w, r, "", "That's already your username.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Users.UpdateUsername(ctx, userID, newName)
	switch {
	case errors.Is(err, userstore.ErrUsernameLooksLikeEmail):
		h.renderSettings(w, r, "Usernames can't look like an email address.", "")
		return
	case errors.Is(err, userstore.ErrDuplicateUsername):
		h.renderSettings(w, r, "That username is taken.", "")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB update username", err, "A server error occurred.", "/settings")
		return
	}

	h.AuditLog.UsernameChanged(r.Context(), r, userID, user.Name, newName)

	// The session cookie caches the old name; re-issue it.
	if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
		ID:    user.ID,
		Name:  newName,
		Email: user.Email,
	}); err != nil {
		h.Log.Warn("refresh session after username change", zap.Error(err))
	}

	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /settings/delete                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDeleteAccount removes the account and everything attached to it:
// standing sessions, notifications on both sides, join requests, and team
// membership (with admin succession). The deletions run in dependency
// order; a failure partway leaves earlier deletions in place, which is
// acceptable because every step is idempotent and re-runnable.
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.reauthenticate(ctx, r, userID); err != nil {
		if errors.Is(err, ErrReauthFailed) {
			h.renderSettings(w, r, "That didn't match. Your account was not deleted.", "")
			return
		}
		h.ErrLog.LogServerError(w, r, "DB load user for re-auth", err, "A server error occurred.", "/settings")
		return
	}

	corr := auditlog.NewCorrelationID()

	if _, err := h.Standing.DeleteByUser(ctx, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete standing sessions", err, "Could not delete your account.", "/settings")
		return
	}
	if _, err := h.Notifs.DeleteByUserAnySide(ctx, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete notifications", err, "Could not delete your account.", "/settings")
		return
	}
	if _, err := h.Requests.DeleteByUser(ctx, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete join requests", err, "Could not delete your account.", "/settings")
		return
	}
	if err := h.Coordinator.LeaveOtherTeams(ctx, userID, primitive.NilObjectID, corr); err != nil {
		h.ErrLog.LogServerError(w, r, "leave teams", err, "Could not delete your account.", "/settings")
		return
	}
	if _, err := h.Users.Delete(ctx, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete user", err, "Could not delete your account.", "/settings")
		return
	}

	h.AuditLog.AccountDeleted(ctx, r, userID, corr)
	h.Log.Info("account deleted",
		zap.String("user_id", userID.Hex()),
		zap.String("correlation_id", corr))

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign out after account deletion", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// reauthenticate verifies the identity proof in the delete form: the
// password for internal accounts, or the typed username for Google
// accounts (which have no password).
func (h *Handler) reauthenticate(ctx context.Context, r *http.Request, userID primitive.ObjectID) error {
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if u.PasswordHash != "" {
		if !authutil.CheckPassword(r.FormValue("password"), u.PasswordHash) {
			return ErrReauthFailed
		}
		return nil
	}

	if normalize.Username(r.FormValue("confirm_username")) != u.Username {
		return ErrReauthFailed
	}
	return nil
}

func currentUserID(r *http.Request) (*auth.SessionUser, primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, primitive.NilObjectID, false
	}
	return u, oid, true
}
