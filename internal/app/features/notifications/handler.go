// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	"github.com/dalemusser/standhub/internal/app/membership"
	notificationstore "github.com/dalemusser/standhub/internal/app/store/notifications"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin's notification inbox and its accept/reject actions.
type Handler struct {
	Notifs      *notificationstore.Store
	Teams       *teamstore.Store
	Coordinator *membership.Coordinator
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	notifs *notificationstore.Store,
	teams *teamstore.Store,
	coordinator *membership.Coordinator,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Notifs:      notifs,
		Teams:       teams,
		Coordinator: coordinator,
		ErrLog:      errLog,
		Log:         logger,
	}
}

type notifRow struct {
	ID        string
	Message   string
	TeamName  string
	CreatedAt time.Time
}

type pageData struct {
	viewdata.BaseVM
	Notifications []notifRow
	Flash         string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notifications – unread inbox                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeInbox(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	unread, err := h.Notifs.UnreadByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB unread notifications", err, "A server error occurred.", "/dashboard")
		return
	}

	data := pageData{
		BaseVM: viewdata.NewBaseVM(r, "Notifications", "/dashboard"),
		Flash:  flashMessage(r.URL.Query().Get("resolved")),
	}
	for _, n := range unread {
		row := notifRow{
			ID:        n.ID.Hex(),
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		}
		// A vanished team orphans the notification; retire it quietly
		// instead of offering an accept that can only fail.
		team, err := h.Teams.GetByID(ctx, n.TeamID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			if err := h.Notifs.MarkRead(ctx, n.ID); err != nil {
				h.Log.Warn("retire orphaned notification",
					zap.Error(err), zap.String("notification_id", n.ID.Hex()))
			}
			continue
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB find team", err, "A server error occurred.", "/dashboard")
			return
		}
		row.TeamName = team.Name
		data.Notifications = append(data.Notifications, row)
	}

	templates.Render(w, r, "notifications", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /notifications/{notificationID}/accept | /reject                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, accept bool) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	notifID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That notification link is malformed.", "/notifications")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	_, err = h.Coordinator.Resolve(ctx, userID, notifID, accept)
	switch {
	case errors.Is(err, membership.ErrNotRecipient):
		uierrors.RenderForbidden(w, r, "This notification belongs to someone else.", "/notifications")
		return
	case errors.Is(err, membership.ErrRequestNotFound):
		http.Redirect(w, r, "/notifications?resolved=gone", http.StatusSeeOther)
		return
	case errors.Is(err, membership.ErrRequestResolved):
		http.Redirect(w, r, "/notifications?resolved=already", http.StatusSeeOther)
		return
	case errors.Is(err, membership.ErrTeamNotFound):
		http.Redirect(w, r, "/notifications?resolved=team_gone", http.StatusSeeOther)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "resolve join request", err, "A server error occurred.", "/notifications")
		return
	}

	if accept {
		http.Redirect(w, r, "/notifications?resolved=accepted", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/notifications?resolved=rejected", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /notifications/count – unread badge                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCount(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	count, err := h.Notifs.CountUnread(ctx, userID)
	if err != nil {
		h.Log.Error("count unread notifications", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"count": count})
}

// flashMessage maps the resolved query param to a human message.
func flashMessage(code string) string {
	switch code {
	case "accepted":
		return "Request accepted — they're on your team now."
	case "rejected":
		return "Request declined."
	case "already":
		return "That request was already handled."
	case "gone", "team_gone":
		return "That request is no longer valid."
	default:
		return ""
	}
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
