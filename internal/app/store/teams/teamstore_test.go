package teamstore_test

import (
	"testing"

	teamstore "github.com/dalemusser/standhub/internal/app/store/teams"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adminID := primitive.NewObjectID()
	team, err := store.Create(ctx, "  Office Standers  ", adminID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if team.Name != "Office Standers" {
		t.Errorf("Name: got %q, want %q", team.Name, "Office Standers")
	}
	if team.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if team.AdminID != adminID {
		t.Errorf("AdminID: got %v, want %v", team.AdminID, adminID)
	}
	if len(team.Members) != 1 || team.Members[0] != adminID {
		t.Errorf("Members: got %v, want [%v]", team.Members, adminID)
	}
}

func TestStore_NameExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "Case Check", primitive.NewObjectID()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := store.NameExists(ctx, "CASE CHECK")
	if err != nil {
		t.Fatalf("NameExists failed: %v", err)
	}
	if !exists {
		t.Error("expected folded name match")
	}

	exists, err = store.NameExists(ctx, "Something Else")
	if err != nil {
		t.Fatalf("NameExists failed: %v", err)
	}
	if exists {
		t.Error("expected no match for unrelated name")
	}
}

func TestStore_GetByMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adminID := primitive.NewObjectID()
	team, err := store.Create(ctx, "Member Lookup", adminID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByMember(ctx, adminID)
	if err != nil {
		t.Fatalf("GetByMember failed: %v", err)
	}
	if found.ID != team.ID {
		t.Errorf("ID: got %v, want %v", found.ID, team.ID)
	}

	_, err = store.GetByMember(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for non-member, got %v", err)
	}
}

func TestStore_AddRemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adminID := primitive.NewObjectID()
	team, err := store.Create(ctx, "Roster", adminID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := primitive.NewObjectID()
	if err := store.AddMember(ctx, team.ID, other); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Adding again must not duplicate
	if err := store.AddMember(ctx, team.ID, other); err != nil {
		t.Fatalf("AddMember (repeat) failed: %v", err)
	}

	found, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.Members) != 2 {
		t.Errorf("expected 2 members, got %d: %v", len(found.Members), found.Members)
	}

	if err := store.RemoveMember(ctx, team.ID, other); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	found, err = store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(found.Members) != 1 || found.Members[0] != adminID {
		t.Errorf("Members after remove: got %v, want [%v]", found.Members, adminID)
	}
}

func TestStore_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Alpha Desk", "Beta Desk", "alpha crew"} {
		if _, err := store.Create(ctx, name, primitive.NewObjectID()); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 teams, got %d", len(all))
	}

	alphas, err := store.List(ctx, "ALPHA")
	if err != nil {
		t.Fatalf("List with search failed: %v", err)
	}
	if len(alphas) != 2 {
		t.Errorf("expected 2 alpha teams, got %d", len(alphas))
	}
}

func TestStore_SetAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adminID := primitive.NewObjectID()
	team, err := store.Create(ctx, "Succession", adminID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	next := primitive.NewObjectID()
	if err := store.SetAdmin(ctx, team.ID, next); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}

	found, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.AdminID != next {
		t.Errorf("AdminID: got %v, want %v", found.AdminID, next)
	}
}
