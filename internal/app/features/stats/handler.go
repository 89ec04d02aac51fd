// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/timefmt"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the personal stats page and the team leaderboard.
type Handler struct {
	Standing *standingstore.Store
	Teams    *teamstore.Store
	Users    *userstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(standing *standingstore.Store, teams *teamstore.Store, users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Standing: standing,
		Teams:    teams,
		Users:    users,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// leaderRow is one leaderboard entry, ranked by standing time.
type leaderRow struct {
	Rank        int
	Username    string
	TotalSecs   int64
	TotalPretty string
	IsMe        bool
}

type pageData struct {
	viewdata.BaseVM
	TodayPretty   string
	TotalPretty   string
	AveragePretty string
	LongestPretty string
	ActiveDays    int64
	SessionCount  int64

	HasTeam  bool
	TeamName string
	Period   string
	Periods  []string
	Leaders  []leaderRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /stats?period=weekly                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	period := query.Get(r, "period")
	if !timefmt.ValidPeriod(period) {
		period = timefmt.PeriodWeekly
	}

	now := time.Now()

	stats, err := h.Standing.StatsForUser(ctx, userID, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB user stats", err, "A server error occurred.", "/dashboard")
		return
	}

	data := pageData{
		BaseVM:        viewdata.NewBaseVM(r, "Stats", "/dashboard"),
		TodayPretty:   timefmt.Duration(stats.TodaySecs),
		TotalPretty:   timefmt.Duration(stats.TotalSecs),
		AveragePretty: timefmt.Duration(stats.AverageSecs),
		LongestPretty: timefmt.Duration(stats.LongestSecs),
		ActiveDays:    stats.ActiveDays,
		SessionCount:  stats.SessionCount,
		Period:        period,
		Periods: []string{
			timefmt.PeriodDaily, timefmt.PeriodWeekly,
			timefmt.PeriodMonthly, timefmt.PeriodYearly,
		},
	}

	team, err := h.Teams.GetByMember(ctx, userID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		templates.Render(w, r, "stats", data)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find team", err, "A server error occurred.", "/dashboard")
		return
	}

	data.HasTeam = true
	data.TeamName = team.Name

	since := timefmt.PeriodStart(period, now)
	totals, err := h.Standing.TotalsByUserSince(ctx, team.Members, since)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB leaderboard totals", err, "A server error occurred.", "/dashboard")
		return
	}
	names, err := h.Users.GetManyByID(ctx, team.Members)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load members", err, "A server error occurred.", "/dashboard")
		return
	}

	for _, memberID := range team.Members {
		row := leaderRow{
			TotalSecs: totals[memberID],
			IsMe:      memberID == userID,
		}
		if u, found := names[memberID]; found {
			row.Username = u.Username
		} else {
			row.Username = "(deleted account)"
		}
		row.TotalPretty = timefmt.Duration(row.TotalSecs)
		data.Leaders = append(data.Leaders, row)
	}
	sort.SliceStable(data.Leaders, func(i, j int) bool {
		return data.Leaders[i].TotalSecs > data.Leaders[j].TotalSecs
	})
	for i := range data.Leaders {
		data.Leaders[i].Rank = i + 1
	}

	templates.Render(w, r, "stats", data)
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
