package indexes_test

import (
	"testing"

	"github.com/dalemusser/standhub/internal/app/system/indexes"
	"github.com/dalemusser/standhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// SetupTestDB already ran EnsureAll once; a second run must reuse
	// everything without error.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll (second run) failed: %v", err)
	}

	cur, err := db.Collection("users").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	defer cur.Close(ctx)

	names := map[string]bool{}
	for cur.Next(ctx) {
		var idx struct {
			Name string `bson:"name"`
		}
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		names[idx.Name] = true
	}
	for _, want := range []string{"uniq_users_emailci", "uniq_users_usernameci"} {
		if !names[want] {
			t.Errorf("missing users index %q (have %v)", want, names)
		}
	}
}

func TestEnsureAll_NoUniqueTeamName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection("teams").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var idx struct {
			Name   string `bson:"name"`
			Key    bson.D `bson:"key"`
			Unique *bool  `bson:"unique,omitempty"`
		}
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for _, kv := range idx.Key {
			if kv.Key == "name_ci" && idx.Unique != nil && *idx.Unique {
				t.Errorf("teams.name_ci must not be unique (index %q)", idx.Name)
			}
		}
	}
}
