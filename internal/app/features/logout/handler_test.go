package logout_test

import (
	"testing"

	"github.com/dalemusser/standhub/internal/app/features/logout"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *logout.Handler {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return logout.NewHandler(sessionMgr, nil, logger)
}

func TestServeLogout_RedirectsHome(t *testing.T) {
	handler := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/logout", testutil.SomeUser())
	rec := testutil.NewRecorder()

	handler.ServeLogout(rec, req)

	rec.AssertRedirect(t, "/")
}

func TestServeLogout_HTMXRedirect(t *testing.T) {
	handler := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/logout", testutil.SomeUser())
	req.Header.Set("HX-Request", "true")
	rec := testutil.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if loc := rec.Header().Get("HX-Redirect"); loc != "/" {
		t.Errorf("HX-Redirect = %q, want /", loc)
	}
}
