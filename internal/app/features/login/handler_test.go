package login_test

import (
	"testing"

	uierrors "github.com/dalemusser/standhub/internal/app/features/errors"
	"github.com/dalemusser/standhub/internal/app/features/login"
	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/authutil"
	"github.com/dalemusser/standhub/internal/app/system/status"
	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	users := userstore.New(db)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	return login.NewHandler(users, sessionMgr, nil, uierrors.NewErrorLogger(logger), logger, false), users
}

func createAccount(t *testing.T, users *userstore.Store, email, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	u, err := users.Create(ctx, models.User{
		Username:     "walker",
		Email:        email,
		PasswordHash: hash,
		AuthMethod:   "internal",
		Status:       status.Active,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return u
}

func TestHandleSubmit_Success(t *testing.T) {
	handler, users := newTestHandler(t)
	createAccount(t, users, "walker@example.com", "correct horse battery")

	req := testutil.NewFormRequest("/login", map[string]string{
		"email":    "walker@example.com",
		"password": "correct horse battery",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()

	handler.HandleSubmit(rec, req)

	rec.AssertRedirect(t, "/dashboard")
	if cookies := rec.Result().Cookies(); len(cookies) == 0 {
		t.Error("expected a session cookie to be set")
	}
}

func TestHandleSubmit_ReturnURL(t *testing.T) {
	handler, users := newTestHandler(t)
	createAccount(t, users, "walker@example.com", "correct horse battery")

	req := testutil.NewFormRequest("/login", map[string]string{
		"email":    "walker@example.com",
		"password": "correct horse battery",
		"return":   "/teams",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()

	handler.HandleSubmit(rec, req)

	rec.AssertRedirect(t, "/teams")
}

func TestHandleSubmit_WrongPassword(t *testing.T) {
	handler, users := newTestHandler(t)
	createAccount(t, users, "walker@example.com", "correct horse battery")

	req := testutil.NewFormRequest("/login", map[string]string{
		"email":    "walker@example.com",
		"password": "not the password",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }() // template render may panic in tests
		handler.HandleSubmit(rec, req)
	}()

	if rec.Code == 303 {
		t.Fatal("wrong password must not sign the user in")
	}
}

func TestHandleSubmit_UnknownEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewFormRequest("/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever it takes",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }()
		handler.HandleSubmit(rec, req)
	}()

	if rec.Code == 303 {
		t.Fatal("unknown email must not sign anyone in")
	}
}

func TestHandleSubmit_DisabledAccount(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, _ := authutil.HashPassword("correct horse battery")
	if _, err := users.Create(ctx, models.User{
		Username:     "benched",
		Email:        "benched@example.com",
		PasswordHash: hash,
		AuthMethod:   "internal",
		Status:       status.Disabled,
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	req := testutil.NewFormRequest("/login", map[string]string{
		"email":    "benched@example.com",
		"password": "correct horse battery",
	}, testutil.TestUser{})
	rec := testutil.NewRecorder()

	func() {
		defer func() { recover() }()
		handler.HandleSubmit(rec, req)
	}()

	if rec.Code == 303 {
		t.Fatal("disabled account must not sign in")
	}
}
