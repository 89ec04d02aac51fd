// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/timefmt"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the desk timer page and its start/stop actions.
type Handler struct {
	Standing *standingstore.Store
	Teams    *teamstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(standing *standingstore.Store, teams *teamstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Standing: standing,
		Teams:    teams,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type pageData struct {
	viewdata.BaseVM
	IsStanding    bool
	StandingSince time.Time
	ElapsedPretty string
	TodayPretty   string
	TodaySecs     int64
	TeamName      string
	TeamID        string
	HasTeam       bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	now := time.Now().UTC()
	data := pageData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
	}

	open, err := h.Standing.Open(ctx, userID)
	switch {
	case err == nil:
		data.IsStanding = true
		data.StandingSince = open.StartTime
		data.ElapsedPretty = timefmt.Duration(int64(now.Sub(open.StartTime).Seconds()))
	case errors.Is(err, mongo.ErrNoDocuments):
		// not standing
	default:
		h.ErrLog.LogServerError(w, r, "DB find open session", err, "A server error occurred.", "/")
		return
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := h.Standing.TotalSince(ctx, userID, midnight)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB today total", err, "A server error occurred.", "/")
		return
	}
	// The running session counts toward today's display total.
	if data.IsStanding {
		today += int64(now.Sub(data.StandingSince).Seconds())
	}
	data.TodaySecs = today
	data.TodayPretty = timefmt.Duration(today)

	team, err := h.Teams.GetByMember(ctx, userID)
	switch {
	case err == nil:
		data.HasTeam = true
		data.TeamName = team.Name
		data.TeamID = team.ID.Hex()
	case errors.Is(err, mongo.ErrNoDocuments):
		// no team yet
	default:
		h.ErrLog.LogServerError(w, r, "DB find team", err, "A server error occurred.", "/")
		return
	}

	templates.Render(w, r, "dashboard", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /dashboard/start                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Standing.Start(ctx, userID, time.Now())
	if err != nil && !errors.Is(err, standingstore.ErrSessionOpen) {
		h.ErrLog.LogServerError(w, r, "DB start session", err, "Could not start the timer.", "/dashboard")
		return
	}
	// Already-open is fine: double-clicking Start keeps the running session.

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /dashboard/stop                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	open, err := h.Standing.Open(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Nothing running; Stop is a no-op.
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find open session", err, "Could not stop the timer.", "/dashboard")
		return
	}

	if _, err := h.Standing.Stop(ctx, open.ID, time.Now()); err != nil {
		h.ErrLog.LogServerError(w, r, "DB stop session", err, "Could not stop the timer.", "/dashboard")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// currentUserID pulls the signed-in user and their ObjectID from context.
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
