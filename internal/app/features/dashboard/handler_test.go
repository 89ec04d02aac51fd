package dashboard_test

import (
	"testing"
	"time"

	"github.com/dalemusser/standhub/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *standingstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	standing := standingstore.New(db)
	h := dashboard.NewHandler(standing, teamstore.New(db), uierrors.NewErrorLogger(logger), logger)
	return h, standing, testutil.NewFixtures(t, db)
}

func TestHandleStart_OpensSession(t *testing.T) {
	handler, standing, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "walker", "walker@example.com")

	req := testutil.NewFormRequest("/dashboard/start", nil, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	handler.HandleStart(rec, req)

	rec.AssertRedirect(t, "/dashboard")

	open, err := standing.Open(ctx, u.ID)
	if err != nil {
		t.Fatalf("no open session after start: %v", err)
	}
	if open.EndTime != nil {
		t.Error("session should still be open")
	}
}

func TestHandleStart_SecondStartIsNoOp(t *testing.T) {
	handler, standing, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "walker", "walker@example.com")
	first, err := standing.Start(ctx, u.ID, time.Now().Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	req := testutil.NewFormRequest("/dashboard/start", nil, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	handler.HandleStart(rec, req)

	rec.AssertRedirect(t, "/dashboard")

	open, err := standing.Open(ctx, u.ID)
	if err != nil {
		t.Fatalf("open session lost: %v", err)
	}
	if open.ID != first.ID {
		t.Error("double start must keep the original session")
	}
}

func TestHandleStop_ClosesSession(t *testing.T) {
	handler, standing, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "walker", "walker@example.com")
	sess, err := standing.Start(ctx, u.ID, time.Now().Add(-25*time.Minute))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	req := testutil.NewFormRequest("/dashboard/stop", nil, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	handler.HandleStop(rec, req)

	rec.AssertRedirect(t, "/dashboard")

	if _, err := standing.Open(ctx, u.ID); err == nil {
		t.Fatal("session should be closed after stop")
	}
	closed, err := standing.Stop(ctx, sess.ID, time.Now()) // idempotent re-read
	if err != nil {
		t.Fatalf("re-read closed session: %v", err)
	}
	if closed.DurationSecs < 24*60 {
		t.Errorf("duration_secs = %d, want about 25 minutes", closed.DurationSecs)
	}
}

func TestHandleStop_WithoutOpenSession(t *testing.T) {
	handler, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "walker", "walker@example.com")

	req := testutil.NewFormRequest("/dashboard/stop", nil, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()

	handler.HandleStop(rec, req)

	rec.AssertRedirect(t, "/dashboard")
}

func TestHandleStart_AnonymousRejected(t *testing.T) {
	handler, standing, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest("/dashboard/start", nil, testutil.TestUser{})
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }() // error page render may panic in tests
		handler.HandleStart(rec, req)
	}()

	if _, err := standing.Open(ctx, primitive.NilObjectID); err == nil {
		t.Fatal("anonymous request must not open a session")
	}
}
