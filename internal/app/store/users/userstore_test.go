package userstore_test

import (
	"testing"

	userstore "github.com/dalemusser/standhub/internal/app/store/users"
	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		Username:   "DeskStander",
		Email:      "stander@example.com",
		AuthMethod: "internal",
	}

	created, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.UsernameCI == "" {
		t.Error("expected UsernameCI to be set")
	}
	if created.EmailCI == "" {
		t.Error("expected EmailCI to be set")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if created.Status != "active" {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
}

func TestStore_Create_UsernameShapedLikeEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		Username:   "someone@example.com",
		Email:      "someone@example.com",
		AuthMethod: "internal",
	}

	_, err := store.Create(ctx, user)
	if err != userstore.ErrUsernameLooksLikeEmail {
		t.Errorf("expected ErrUsernameLooksLikeEmail, got %v", err)
	}
}

func TestStore_Create_InvalidAuthMethod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		Username:   "Test User",
		Email:      "test@example.com",
		AuthMethod: "magic_link",
	}

	_, err := store.Create(ctx, user)
	if err == nil {
		t.Fatal("expected error for invalid auth method")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user1 := models.User{
		Username:   "User One",
		Email:      "duplicate@example.com",
		AuthMethod: "internal",
	}
	if _, err := store.Create(ctx, user1); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	user2 := models.User{
		Username:   "User Two",
		Email:      "Duplicate@Example.COM",
		AuthMethod: "internal",
	}
	if _, err := store.Create(ctx, user2); err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user1 := models.User{
		Username:   "SameName",
		Email:      "first@example.com",
		AuthMethod: "internal",
	}
	if _, err := store.Create(ctx, user1); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	user2 := models.User{
		Username:   "samename",
		Email:      "second@example.com",
		AuthMethod: "internal",
	}
	if _, err := store.Create(ctx, user2); err != userstore.ErrDuplicateUsername {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		Username:   "Email Test User",
		Email:      "FindMe@Example.COM",
		AuthMethod: "internal",
	}
	created, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Search with different case
	found, err := store.GetByEmail(ctx, "findme@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_GetByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		Username:   "MixedCase",
		Email:      "mixed@example.com",
		AuthMethod: "internal",
	}
	created, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByUsername(ctx, "MIXEDCASE")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_UpdateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Username:   "Original",
		Email:      "rename@example.com",
		AuthMethod: "internal",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.UpdateUsername(ctx, created.ID, "Renamed"); err != nil {
		t.Fatalf("UpdateUsername failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Username != "Renamed" {
		t.Errorf("Username: got %q, want %q", found.Username, "Renamed")
	}

	// Renaming to an email-shaped string is rejected
	if err := store.UpdateUsername(ctx, created.ID, "new@example.com"); err != userstore.ErrUsernameLooksLikeEmail {
		t.Errorf("expected ErrUsernameLooksLikeEmail, got %v", err)
	}
}

func TestStore_UsernameExistsForOther(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created1, err := store.Create(ctx, models.User{
		Username:   "UserOne",
		Email:      "user1@example.com",
		AuthMethod: "internal",
	})
	if err != nil {
		t.Fatalf("Create user1 failed: %v", err)
	}
	created2, err := store.Create(ctx, models.User{
		Username:   "UserTwo",
		Email:      "user2@example.com",
		AuthMethod: "internal",
	})
	if err != nil {
		t.Fatalf("Create user2 failed: %v", err)
	}

	exists, err := store.UsernameExistsForOther(ctx, "userone", created1.ID)
	if err != nil {
		t.Fatalf("UsernameExistsForOther failed: %v", err)
	}
	if exists {
		t.Error("expected false when checking own username")
	}

	exists, err = store.UsernameExistsForOther(ctx, "userone", created2.ID)
	if err != nil {
		t.Fatalf("UsernameExistsForOther failed: %v", err)
	}
	if !exists {
		t.Error("expected true when checking another user's username")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Username:   "Delete Me",
		Email:      "delete@example.com",
		AuthMethod: "internal",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 deleted, got %d", count)
	}

	_, err = store.GetByID(ctx, created.ID)
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments after delete, got %v", err)
	}
}
