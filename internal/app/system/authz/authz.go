// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/standhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the signed-in user's username, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is
// malformed, it returns "", NilObjectID, false — so ok=true always
// means a valid, authenticated user with a valid ObjectID.
//
// StandHub has no site-wide role tiers; "team admin" is per-team data
// on the Team document, decided by comparing the team's admin_id to
// the user ID returned here.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// IsSignedIn reports whether the request carries a valid user.
func IsSignedIn(r *http.Request) bool {
	_, _, ok := UserCtx(r)
	return ok
}
