package userstore

import (
	"context"

	"github.com/dalemusser/standhub/internal/app/system/auth"
	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/app/system/status"
	"github.com/dalemusser/standhub/internal/app/system/timeouts"
	"github.com/dalemusser/standhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so the session middleware sees a
// fresh user document on every request. Username edits and account
// deletion take effect without waiting for the cookie to expire.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchSessionUser retrieves a user by ID. It returns (nil, nil) when the
// user no longer exists or is disabled, which the middleware treats as
// signed out.
func (f *Fetcher) FetchSessionUser(ctx context.Context, idHex string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":      1,
		"username": 1,
		"email":    1,
		"status":   1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	if normalize.Status(u.Status) == status.Disabled {
		return nil, nil
	}

	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Username,
		Email: u.Email,
	}, nil
}
