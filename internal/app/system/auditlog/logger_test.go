package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/standhub/internal/app/store/audit"
	"github.com/dalemusser/standhub/internal/app/system/auditlog"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "internal")
	logger.Logout(ctx, req, primitive.NewObjectID().Hex())
	logger.TeamLeft(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth: "off",
		Team: "off",
	})

	userID := primitive.NewObjectID()
	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
	})

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth: "db",
		Team: "db",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
	})

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("EventType: got %q, want %q", events[0].EventType, audit.EventLoginSuccess)
	}
}

func TestLogger_Log_ConfigLogOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth: "log",
		Team: "log",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryTeam,
		EventType: audit.EventTeamCreated,
		UserID:    &userID,
		Success:   true,
	})

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no DB events when config is 'log'")
	}
}

func TestLogger_RequestResolved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth: "db",
		Team: "db",
	})

	req := httptest.NewRequest("POST", "/notifications/accept", nil)
	actorID := primitive.NewObjectID()
	requesterID := primitive.NewObjectID()
	teamID := primitive.NewObjectID()
	corr := auditlog.NewCorrelationID()

	logger.RequestResolved(ctx, req, actorID, requesterID, teamID, true, corr)
	logger.RequestResolved(ctx, req, actorID, requesterID, teamID, false, corr)

	accepted, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventRequestAccepted})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(accepted) != 1 {
		t.Fatalf("expected 1 accepted event, got %d", len(accepted))
	}
	if accepted[0].ActorID == nil || *accepted[0].ActorID != actorID {
		t.Errorf("ActorID: got %v, want %v", accepted[0].ActorID, actorID)
	}
	if accepted[0].CorrelationID != corr {
		t.Errorf("CorrelationID: got %q, want %q", accepted[0].CorrelationID, corr)
	}

	rejected, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventRequestRejected})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rejected) != 1 {
		t.Errorf("expected 1 rejected event, got %d", len(rejected))
	}
}

func TestNewCorrelationID_Unique(t *testing.T) {
	a := auditlog.NewCorrelationID()
	b := auditlog.NewCorrelationID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}
