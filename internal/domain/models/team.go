// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a named group with one admin and a set of members.
//
// Invariants maintained by the membership coordinator:
//   - AdminID is always an element of Members while the team exists.
//   - A team whose last member leaves is deleted, never left empty.
//   - Members has set semantics; writes go through $addToSet / $pull so
//     a user never appears twice.
//
// Name uniqueness is a best-effort pre-check at creation time, not a
// database constraint. Two racing creators can produce a duplicate
// name; that is an accepted limitation.
type Team struct {
	ID      primitive.ObjectID   `bson:"_id" json:"id"`
	Name    string               `bson:"name" json:"name"`
	NameCI  string               `bson:"name_ci" json:"name_ci"`
	AdminID primitive.ObjectID   `bson:"admin_id" json:"admin_id"`
	Members []primitive.ObjectID `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is in the team's member set.
func (t Team) HasMember(userID primitive.ObjectID) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}
