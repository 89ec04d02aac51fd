// internal/app/features/settings/handler_test.go
package settings_test

import (
	"errors"
	"testing"
	"time"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	"github.com/dalemusser/standhub/internal/app/features/settings"
	"github.com/dalemusser/standhub/internal/app/membership"
	joinrequeststore "github.com/dalemusser/standhub/internal/app/store/joinrequests"
	notificationstore "github.com/dalemusser/standhub/internal/app/store/notifications"
	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/authutil"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type testEnv struct {
	handler  *settings.Handler
	fx       *testutil.Fixtures
	users    *userstore.Store
	standing *standingstore.Store
	notifs   *notificationstore.Store
	requests *joinrequeststore.Store
	teams    *teamstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	users := userstore.New(db)
	standing := standingstore.New(db)
	notifs := notificationstore.New(db)
	requests := joinrequeststore.New(db)

	h := settings.NewHandler(
		users,
		standing,
		notifs,
		requests,
		membership.New(db, logger, nil),
		sessionMgr,
		nil,
		uierrors.NewErrorLogger(logger),
		logger,
	)
	return &testEnv{
		handler:  h,
		fx:       testutil.NewFixtures(t, db),
		users:    users,
		standing: standing,
		notifs:   notifs,
		requests: requests,
		teams:    teamstore.New(db),
	}
}

func (e *testEnv) setPassword(t *testing.T, userID primitive.ObjectID, password string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	_, err = e.fx.DB().Collection("users").UpdateByID(ctx, userID,
		bson.M{"$set": bson.M{"password_hash": hash}})
	if err != nil {
		t.Fatalf("set password hash: %v", err)
	}
}

func TestHandleChangeUsername_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := env.fx.CreateUser(ctx, "walker", "walker@example.com")

	req := testutil.NewFormRequest("/settings/username", map[string]string{
		"username": "strider",
	}, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	env.handler.HandleChangeUsername(rec, req)

	rec.AssertRedirect(t, "/settings")

	got, err := env.users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID after rename: %v", err)
	}
	if got.Username != "strider" {
		t.Errorf("username = %q, want strider", got.Username)
	}
}

func TestHandleChangeUsername_RejectsEmailShape(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := env.fx.CreateUser(ctx, "walker", "walker@example.com")

	req := testutil.NewFormRequest("/settings/username", map[string]string{
		"username": "walker@example.org",
	}, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }()
		env.handler.HandleChangeUsername(rec, req)
	}()

	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}
	got, err := env.users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != "walker" {
		t.Errorf("username changed to %q, want walker", got.Username)
	}
}

func TestHandleChangeUsername_RejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := env.fx.CreateUser(ctx, "walker", "walker@example.com")
	env.fx.CreateUser(ctx, "strider", "strider@example.com")

	req := testutil.NewFormRequest("/settings/username", map[string]string{
		"username": "Strider",
	}, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }()
		env.handler.HandleChangeUsername(rec, req)
	}()

	got, err := env.users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != "walker" {
		t.Errorf("username changed to %q, want walker", got.Username)
	}
}

func TestHandleDeleteAccount_WrongPasswordBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := env.fx.CreateUser(ctx, "walker", "walker@example.com")
	env.setPassword(t, u.ID, "correct battery staple")

	req := testutil.NewFormRequest("/settings/delete", map[string]string{
		"password": "not the password",
	}, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }()
		env.handler.HandleDeleteAccount(rec, req)
	}()

	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}
	if _, err := env.users.GetByID(ctx, u.ID); err != nil {
		t.Fatalf("account deleted despite wrong password: %v", err)
	}
}

func TestHandleDeleteAccount_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := env.fx.CreateUser(ctx, "walker", "walker@example.com")
	env.setPassword(t, u.ID, "correct battery staple")
	other := env.fx.CreateUser(ctx, "strider", "strider@example.com")

	team := env.fx.CreateTeam(ctx, "Desk Crew", u.ID, other.ID)
	env.fx.CreateStandingSession(ctx, u.ID, time.Now().UTC().Add(-time.Hour), 1800)
	jr := env.fx.CreateJoinRequest(ctx, team.ID, other.ID, "pending")
	env.fx.CreateNotification(ctx, u.ID, other.ID, jr.ID, team.ID, "strider wants to join Desk Crew")

	req := testutil.NewFormRequest("/settings/delete", map[string]string{
		"password": "correct battery staple",
	}, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	env.handler.HandleDeleteAccount(rec, req)

	rec.AssertRedirect(t, "/")

	if _, err := env.users.GetByID(ctx, u.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("user still present after delete (err=%v)", err)
	}

	// The team survives with the remaining member promoted to admin.
	got, err := env.teams.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("team should survive with a remaining member: %v", err)
	}
	if got.AdminID != other.ID {
		t.Errorf("admin = %s, want succession to %s", got.AdminID.Hex(), other.ID.Hex())
	}
	for _, m := range got.Members {
		if m == u.ID {
			t.Error("deleted user still a team member")
		}
	}

	if total, err := env.standing.TotalSince(ctx, u.ID, time.Time{}); err != nil || total != 0 {
		t.Errorf("standing time remains after delete: total=%d err=%v", total, err)
	}
	n, err := env.fx.DB().Collection("notifications").CountDocuments(ctx,
		bson.M{"$or": bson.A{bson.M{"recipient_id": u.ID}, bson.M{"sender_id": u.ID}}})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if n != 0 {
		t.Errorf("%d notifications remain after delete", n)
	}
}

func TestHandleDeleteAccount_GoogleAccountConfirmsWithUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// No password hash: a Google-linked account.
	u := env.fx.CreateUser(ctx, "walker", "walker@gmail.com")

	// Wrong confirmation text.
	req := testutil.NewFormRequest("/settings/delete", map[string]string{
		"confirm_username": "someone else",
	}, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()
	func() {
		defer func() { recover() }()
		env.handler.HandleDeleteAccount(rec, req)
	}()
	if _, err := env.users.GetByID(ctx, u.ID); err != nil {
		t.Fatalf("account deleted despite wrong confirmation: %v", err)
	}

	// Matching username deletes.
	req = testutil.NewFormRequest("/settings/delete", map[string]string{
		"confirm_username": "walker",
	}, testutil.AsTestUser(u))
	rec = testutil.NewRecorder()
	env.handler.HandleDeleteAccount(rec, req)

	rec.AssertRedirect(t, "/")
	if _, err := env.users.GetByID(ctx, u.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("user still present after delete (err=%v)", err)
	}
}
