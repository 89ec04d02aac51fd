// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in StandHub.
//
// NOTE:
//   - Team membership is not embedded on User.
//     Teams carry their member list; query teams.members to discover
//     which team a user belongs to.
//   - Username is display-facing and mutable; it must never be an
//     email-shaped string (enforced at signup and username change).
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"username_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"`

	// PasswordHash is empty for accounts created via Google sign-in.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string `bson:"auth_method" json:"auth_method"` // internal | google
	Status       string `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
