// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	"github.com/dalemusser/standhub/internal/app/membership"
	joinrequeststore "github.com/dalemusser/standhub/internal/app/store/joinrequests"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auditlog"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/app/system/viewdata"
	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves team discovery, creation, and join requests.
type Handler struct {
	Teams       *teamstore.Store
	Users       *userstore.Store
	Requests    *joinrequeststore.Store
	Coordinator *membership.Coordinator
	AuditLog    *auditlog.Logger
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(
	teams *teamstore.Store,
	users *userstore.Store,
	requests *joinrequeststore.Store,
	coordinator *membership.Coordinator,
	auditLog *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Teams:       teams,
		Users:       users,
		Requests:    requests,
		Coordinator: coordinator,
		AuditLog:    auditLog,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// teamRow is one entry in the team list.
type teamRow struct {
	ID          string
	Name        string
	MemberCount int
	IsMine      bool
	Pending     bool
}

type listPageData struct {
	viewdata.BaseVM
	Search  string
	Teams   []teamRow
	HasTeam bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /teams – search & list                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	search := normalize.QueryParam(query.Get(r, "q"))

	teams, err := h.Teams.List(ctx, search)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list teams", err, "A server error occurred.", "/")
		return
	}

	// Join-button state: pending requests for this user, keyed by team.
	pendingByTeam := map[primitive.ObjectID]bool{}
	pending, err := h.Requests.PendingByUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB pending requests", err, "A server error occurred.", "/")
		return
	}
	for _, jr := range pending {
		pendingByTeam[jr.TeamID] = true
	}

	data := listPageData{
		BaseVM: viewdata.NewBaseVM(r, "Teams", "/dashboard"),
		Search: search,
	}
	for _, t := range teams {
		mine := t.HasMember(userID)
		if mine {
			data.HasTeam = true
		}
		data.Teams = append(data.Teams, teamRow{
			ID:          t.ID.Hex(),
			Name:        t.Name,
			MemberCount: len(t.Members),
			IsMine:      mine,
			Pending:     pendingByTeam[t.ID],
		})
	}

	templates.Render(w, r, "teams_list", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /teams/new + POST /teams – create                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type createPageData struct {
	viewdata.BaseVM
	Error        string
	Name         string
	NeedsConfirm bool
}

func (h *Handler) ServeCreateForm(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "teams_create", createPageData{
		BaseVM: viewdata.NewBaseVM(r, "Create Team", "/teams"),
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/teams")
		return
	}

	name := r.FormValue("name")
	confirmed := r.FormValue("confirm_switch") == "yes"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.Coordinator.CreateTeam(ctx, userID, name, confirmed)
	switch {
	case errors.Is(err, membership.ErrTeamNameRequired):
		h.renderCreateWithError(w, r, "Please give your team a name.", name, false)
		return
	case errors.Is(err, membership.ErrTeamNameTaken):
		h.renderCreateWithError(w, r, "A team with that name already exists.", name, false)
		return
	case errors.Is(err, membership.ErrConfirmSwitch):
		h.renderCreateWithError(w, r,
			"Creating this team will remove you from your current team.", name, true)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "create team", err, "A server error occurred.", "/teams")
		return
	}

	h.AuditLog.TeamCreated(r.Context(), r, userID, team.ID, team.Name)

	http.Redirect(w, r, "/teams/"+team.ID.Hex(), http.StatusSeeOther)
}

func (h *Handler) renderCreateWithError(w http.ResponseWriter, r *http.Request, msg, name string, needsConfirm bool) {
	templates.Render(w, r, "teams_create", createPageData{
		BaseVM:       viewdata.NewBaseVM(r, "Create Team", "/teams"),
		Error:        msg,
		Name:         name,
		NeedsConfirm: needsConfirm,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /teams/{teamID} – team view                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type memberRow struct {
	Username string
	IsAdmin  bool
}

type viewPageData struct {
	viewdata.BaseVM
	Team    models.Team
	TeamID  string
	Members []memberRow
	IsMine  bool
	IsAdmin bool
	Pending bool
	CanJoin bool
}

func (h *Handler) ServeTeam(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "teamID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That team link is malformed.", "/teams")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, err := h.Teams.GetByID(ctx, teamID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "That team no longer exists.", "/teams")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find team", err, "A server error occurred.", "/teams")
		return
	}

	users, err := h.Users.GetManyByID(ctx, team.Members)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load members", err, "A server error occurred.", "/teams")
		return
	}

	data := viewPageData{
		BaseVM:  viewdata.NewBaseVM(r, team.Name, "/teams"),
		Team:    team,
		TeamID:  team.ID.Hex(),
		IsMine:  team.HasMember(userID),
		IsAdmin: team.AdminID == userID,
	}
	for _, memberID := range team.Members {
		row := memberRow{IsAdmin: memberID == team.AdminID}
		if u, found := users[memberID]; found {
			row.Username = u.Username
		} else {
			row.Username = "(deleted account)"
		}
		data.Members = append(data.Members, row)
	}

	if !data.IsMine {
		pending, err := h.Requests.PendingByUser(ctx, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB pending requests", err, "A server error occurred.", "/teams")
			return
		}
		for _, jr := range pending {
			if jr.TeamID == team.ID {
				data.Pending = true
			}
		}
		data.CanJoin = !data.Pending
	}

	templates.Render(w, r, "teams_view", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /teams/{teamID}/join – request to join                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	user, userID, ok := currentUserID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	teamID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "teamID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "That team link is malformed.", "/teams")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err = h.Coordinator.RequestJoin(ctx, userID, user.Name, teamID)
	switch {
	case errors.Is(err, membership.ErrTeamNotFound):
		uierrors.RenderNotFound(w, r, "That team no longer exists.", "/teams")
		return
	case errors.Is(err, membership.ErrAlreadyMember),
		errors.Is(err, joinrequeststore.ErrAlreadyRequested):
		// Both are benign double-submits; just go back to the team page.
		http.Redirect(w, r, "/teams/"+teamID.Hex(), http.StatusSeeOther)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "request join", err, "A server error occurred.", "/teams")
		return
	}

	h.AuditLog.JoinRequested(r.Context(), r, userID, teamID)

	http.Redirect(w, r, "/teams/"+teamID.Hex(), http.StatusSeeOther)
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
