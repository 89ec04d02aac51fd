package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given username and email.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: "internal",
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture CreateUser(%q): %v", username, err)
	}
	return u
}

// CreateTeam inserts a team with the given admin and members. The admin
// is always included in the member set.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, adminID primitive.ObjectID, members ...primitive.ObjectID) models.Team {
	f.t.Helper()

	all := []primitive.ObjectID{adminID}
	for _, m := range members {
		if m != adminID {
			all = append(all, m)
		}
	}
	now := time.Now().UTC()
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		AdminID:   adminID,
		Members:   all,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("fixture CreateTeam(%q): %v", name, err)
	}
	return team
}

// CreateJoinRequest inserts a join request with the given status.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, teamID, userID primitive.ObjectID, status string) models.JoinRequest {
	f.t.Helper()

	jr := models.JoinRequest{
		ID:          primitive.NewObjectID(),
		TeamID:      teamID,
		UserID:      userID,
		Status:      status,
		RequestedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("join_requests").InsertOne(ctx, jr); err != nil {
		f.t.Fatalf("fixture CreateJoinRequest: %v", err)
	}
	return jr
}

// CreateNotification inserts an unread notification tied to a join request.
func (f *Fixtures) CreateNotification(ctx context.Context, recipientID, senderID, joinRequestID, teamID primitive.ObjectID, message string) models.Notification {
	f.t.Helper()

	n := models.Notification{
		ID:            primitive.NewObjectID(),
		UserID:        recipientID,
		SenderID:      senderID,
		Message:       message,
		JoinRequestID: joinRequestID,
		TeamID:        teamID,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("fixture CreateNotification: %v", err)
	}
	return n
}

// CreateStandingSession inserts a completed session of the given length.
func (f *Fixtures) CreateStandingSession(ctx context.Context, userID primitive.ObjectID, start time.Time, secs int64) models.StandingSession {
	f.t.Helper()

	end := start.Add(time.Duration(secs) * time.Second)
	s := models.StandingSession{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		StartTime:    start.UTC(),
		EndTime:      &end,
		DurationSecs: secs,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("standing_sessions").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("fixture CreateStandingSession: %v", err)
	}
	return s
}
