// Package membership owns every transition of the team membership graph:
// creating teams, leaving teams, join requests, and the notification
// lifecycle that resolves them. All writes that touch more than one
// document funnel through here so the single-team invariant has exactly
// one enforcement point.
package membership

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/dalemusser/standhub/internal/app/store/audit"
	joinrequeststore "github.com/dalemusser/standhub/internal/app/store/joinrequests"
	notificationstore "github.com/dalemusser/standhub/internal/app/store/notifications"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	"github.com/dalemusser/standhub/internal/app/system/auditlog"
	"github.com/dalemusser/standhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/standhub/internal/app/system/txn"
	"github.com/dalemusser/standhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Coordinator applies membership transitions. Teams embed their member
// set, so each transition is a handful of document writes; multi-write
// steps run inside txn.Run, which degrades to sequential writes on
// standalone servers. When that fallback is interrupted mid-operation a
// user can be left team-less, which the product accepts: the invariant
// protected here is "at most one team", never "at least one".
type Coordinator struct {
	db    *mongo.Database
	log   *zap.Logger
	audit *auditlog.Logger

	teams    *teamstore.Store
	requests *joinrequeststore.Store
	notifs   *notificationstore.Store

	// pickIndex selects the admin successor from n remaining members.
	// Tests pin it; production uses uniform randomness.
	pickIndex func(n int) int
}

// New builds a Coordinator over the given database. audit may be nil.
func New(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger) *Coordinator {
	return &Coordinator{
		db:        db,
		log:       log,
		audit:     audit,
		teams:     teamstore.New(db),
		requests:  joinrequeststore.New(db),
		notifs:    notificationstore.New(db),
		pickIndex: rand.Intn,
	}
}

// SetSuccessorPicker overrides successor selection. Test hook.
func (c *Coordinator) SetSuccessorPicker(pick func(n int) int) {
	c.pickIndex = pick
}

// LeaveOtherTeams removes the user from every team except the one named
// by except (pass NilObjectID to leave all). Each team is processed in
// its own transaction: the member is pulled, and if they were admin the
// team either gets a uniformly random successor or, when now empty, is
// deleted. correlationID ties the resulting audit events to the
// operation that triggered the departure.
func (c *Coordinator) LeaveOtherTeams(ctx context.Context, userID, except primitive.ObjectID, correlationID string) error {
	teams, err := c.teams.FindByMember(ctx, userID)
	if err != nil {
		return fmt.Errorf("find teams for %s: %w", userID.Hex(), err)
	}

	for _, team := range teams {
		if team.ID == except {
			continue
		}
		if err := c.leaveTeam(ctx, team, userID, correlationID); err != nil {
			return fmt.Errorf("leave team %s: %w", team.ID.Hex(), err)
		}
	}
	return nil
}

func (c *Coordinator) leaveTeam(ctx context.Context, team models.Team, userID primitive.ObjectID, correlationID string) error {
	var (
		deleted   bool
		successor *primitive.ObjectID
		gone      bool
	)

	err := txn.Run(ctx, c.db, c.log, func(ctx context.Context) error {
		deleted = false
		successor = nil
		gone = false

		if err := c.teams.RemoveMember(ctx, team.ID, userID); err != nil {
			return err
		}

		if team.AdminID != userID {
			return nil
		}

		// The departing member was admin. Re-read the roster inside the
		// transaction so the successor choice sees the pull.
		fresh, err := c.teams.GetByID(ctx, team.ID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Another actor deleted the team after the roster scan.
			// There is nothing left to leave; the sweep continues with
			// the user's other teams.
			gone = true
			return nil
		}
		if err != nil {
			return err
		}
		if len(fresh.Members) == 0 {
			n, err := c.teams.Delete(ctx, team.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				gone = true
				return nil
			}
			deleted = true
			return nil
		}

		next := fresh.Members[c.pickIndex(len(fresh.Members))]
		if err := c.teams.SetAdmin(ctx, team.ID, next); err != nil {
			return err
		}
		successor = &next
		return nil
	})
	if err != nil {
		return err
	}

	if gone {
		c.log.Info("team vanished while leaving it, skipping",
			zap.String("team_id", team.ID.Hex()),
			zap.String("user_id", userID.Hex()))
		return nil
	}

	c.audit.TeamLeft(ctx, userID, team.ID, correlationID)
	if deleted {
		c.audit.TeamDeleted(ctx, team.ID, correlationID)
		c.log.Info("team deleted after last member left",
			zap.String("team_id", team.ID.Hex()),
			zap.String("user_id", userID.Hex()))
	}
	if successor != nil {
		c.audit.AdminSucceeded(ctx, *successor, team.ID, correlationID)
		c.log.Info("team admin succeeded",
			zap.String("team_id", team.ID.Hex()),
			zap.String("new_admin_id", successor.Hex()))
	}
	return nil
}

// CreateTeam creates a team with the user as sole member and admin.
// confirmed acknowledges leaving the user's current team; without it,
// a user who already belongs somewhere gets ErrConfirmSwitch and nothing
// changes. The name check is best-effort: two racing creates can both
// land with the same name.
//
// If the insert fails after the user already left their old team there
// is no compensating re-join; the user ends up team-less and the error
// is reported.
func (c *Coordinator) CreateTeam(ctx context.Context, userID primitive.ObjectID, name string, confirmed bool) (models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Team{}, ErrTeamNameRequired
	}

	taken, err := c.teams.NameExists(ctx, name)
	if err != nil {
		return models.Team{}, fmt.Errorf("check team name: %w", err)
	}
	if taken {
		return models.Team{}, ErrTeamNameTaken
	}

	if !confirmed {
		_, err := c.teams.GetByMember(ctx, userID)
		if err == nil {
			return models.Team{}, ErrConfirmSwitch
		}
		if err != mongo.ErrNoDocuments {
			return models.Team{}, fmt.Errorf("check current team: %w", err)
		}
	}

	corr := auditlog.NewCorrelationID()
	if err := c.LeaveOtherTeams(ctx, userID, primitive.NilObjectID, corr); err != nil {
		return models.Team{}, err
	}

	team, err := c.teams.Create(ctx, name, userID)
	if err != nil {
		// The user may already have left their old team. Deliberately no
		// rollback; report and leave them team-less.
		c.log.Error("team create failed after leave-all",
			zap.String("user_id", userID.Hex()),
			zap.String("name", name),
			zap.Error(err))
		return models.Team{}, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

// RequestJoin files a pending join request and notifies the team's admin.
// The requester's username is embedded in the notification message after
// sanitizing, so whatever they typed renders as plain text.
func (c *Coordinator) RequestJoin(ctx context.Context, userID primitive.ObjectID, username string, teamID primitive.ObjectID) (models.JoinRequest, error) {
	team, err := c.teams.GetByID(ctx, teamID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.JoinRequest{}, ErrTeamNotFound
		}
		return models.JoinRequest{}, fmt.Errorf("load team: %w", err)
	}
	if team.HasMember(userID) {
		return models.JoinRequest{}, ErrAlreadyMember
	}

	var jr models.JoinRequest
	err = txn.Run(ctx, c.db, c.log, func(ctx context.Context) error {
		var err error
		jr, err = c.requests.Create(ctx, teamID, userID)
		if err != nil {
			return err
		}
		_, err = c.notifs.Create(ctx, models.Notification{
			UserID:        team.AdminID,
			SenderID:      userID,
			Message:       fmt.Sprintf("%s wants to join your team %s", htmlsanitize.PlainText(username), team.Name),
			JoinRequestID: jr.ID,
			TeamID:        teamID,
		})
		return err
	})
	if err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}

// Resolution reports what a Resolve call did, for rendering and auditing.
type Resolution struct {
	Request  models.JoinRequest
	Team     models.Team
	Accepted bool
}

// Resolve handles an admin accepting or rejecting the join request behind
// a notification. Only the notification's recipient may resolve it.
//
// Accepting runs in stages rather than one transaction: mark accepted,
// sweep the requester's other pending requests and their notifications,
// pull the requester out of any current team, then add them to the
// target. If the target team vanished partway the requester is left
// team-less, the notification stays unread, and ErrTeamNotFound is
// returned so the admin sees what happened.
func (c *Coordinator) Resolve(ctx context.Context, adminID, notificationID primitive.ObjectID, accept bool) (Resolution, error) {
	notif, err := c.notifs.GetByID(ctx, notificationID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Resolution{}, ErrRequestNotFound
		}
		return Resolution{}, fmt.Errorf("load notification: %w", err)
	}
	if notif.UserID != adminID {
		return Resolution{}, ErrNotRecipient
	}

	jr, err := c.requests.GetByID(ctx, notif.JoinRequestID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Superseded: an earlier acceptance swept this request away.
			// Retire the stale notification.
			if markErr := c.notifs.MarkRead(ctx, notificationID); markErr != nil {
				c.log.Warn("mark stale notification read failed", zap.Error(markErr))
			}
			return Resolution{}, ErrRequestNotFound
		}
		return Resolution{}, fmt.Errorf("load join request: %w", err)
	}
	if jr.Status != models.JoinRequestPending {
		return Resolution{}, ErrRequestResolved
	}

	if !accept {
		err := txn.Run(ctx, c.db, c.log, func(ctx context.Context) error {
			if err := c.requests.SetStatus(ctx, jr.ID, models.JoinRequestRejected); err != nil {
				return err
			}
			return c.notifs.MarkRead(ctx, notificationID)
		})
		if err != nil {
			return Resolution{}, err
		}
		jr.Status = models.JoinRequestRejected
		c.auditResolve(ctx, adminID, jr, false, "")
		return Resolution{Request: jr, Accepted: false}, nil
	}

	corr := auditlog.NewCorrelationID()

	if err := c.requests.SetStatus(ctx, jr.ID, models.JoinRequestAccepted); err != nil {
		return Resolution{}, fmt.Errorf("accept request: %w", err)
	}
	jr.Status = models.JoinRequestAccepted

	// Supersede the requester's other pending requests before they change
	// teams, so no other admin can accept a request that is now moot.
	stale, err := c.requests.OtherPendingIDs(ctx, jr.UserID, jr.ID)
	if err != nil {
		return Resolution{}, fmt.Errorf("find superseded requests: %w", err)
	}
	if len(stale) > 0 {
		err := txn.Run(ctx, c.db, c.log, func(ctx context.Context) error {
			if _, err := c.requests.DeleteByIDs(ctx, stale); err != nil {
				return err
			}
			_, err := c.notifs.DeleteByJoinRequestIDs(ctx, stale)
			return err
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("supersede requests: %w", err)
		}
	}

	if err := c.LeaveOtherTeams(ctx, jr.UserID, jr.TeamID, corr); err != nil {
		return Resolution{}, err
	}

	if err := c.teams.AddMember(ctx, jr.TeamID, jr.UserID); err != nil {
		return Resolution{}, fmt.Errorf("add member: %w", err)
	}

	// Re-read the team: it can have been deleted between the admin opening
	// the notification and resolving it. The notification stays unread so
	// the failure remains visible.
	team, err := c.teams.GetByID(ctx, jr.TeamID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.log.Warn("accepted join request into vanished team",
				zap.String("team_id", jr.TeamID.Hex()),
				zap.String("user_id", jr.UserID.Hex()))
			return Resolution{}, ErrTeamNotFound
		}
		return Resolution{}, fmt.Errorf("reload team: %w", err)
	}

	if err := c.notifs.MarkRead(ctx, notificationID); err != nil {
		return Resolution{}, fmt.Errorf("mark notification read: %w", err)
	}

	c.auditResolve(ctx, adminID, jr, true, corr)
	return Resolution{Request: jr, Team: team, Accepted: true}, nil
}

func (c *Coordinator) auditResolve(ctx context.Context, adminID primitive.ObjectID, jr models.JoinRequest, accepted bool, correlationID string) {
	et := audit.EventRequestRejected
	if accepted {
		et = audit.EventRequestAccepted
	}
	requesterID, teamID := jr.UserID, jr.TeamID
	c.audit.Log(ctx, audit.Event{
		Category:      audit.CategoryTeam,
		EventType:     et,
		UserID:        &requesterID,
		ActorID:       &adminID,
		TeamID:        &teamID,
		CorrelationID: correlationID,
		Success:       true,
	})
}
