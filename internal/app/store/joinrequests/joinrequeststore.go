// internal/app/store/joinrequests/joinrequeststore.go
package joinrequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/standhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrAlreadyRequested reports a pending request already exists for the
// same user and team pair.
var ErrAlreadyRequested = errors.New("a pending join request already exists for this team")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("join_requests")}
}

// Collection exposes the raw collection for multi-collection transactions.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error) {
	var jr models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&jr); err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}

// Create inserts a pending join request, refusing a second pending request
// for the same team.
func (s *Store) Create(ctx context.Context, teamID, userID primitive.ObjectID) (models.JoinRequest, error) {
	err := s.c.FindOne(ctx, bson.M{
		"team_id": teamID,
		"user_id": userID,
		"status":  models.JoinRequestPending,
	}).Err()
	if err == nil {
		return models.JoinRequest{}, ErrAlreadyRequested
	}
	if err != mongo.ErrNoDocuments {
		return models.JoinRequest{}, err
	}

	jr := models.JoinRequest{
		ID:          primitive.NewObjectID(),
		TeamID:      teamID,
		UserID:      userID,
		Status:      models.JoinRequestPending,
		RequestedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, jr); err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}

// SetStatus moves a request to accepted or rejected.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	return err
}

// PendingByUser returns the user's pending requests, newest first. The
// team list page keys its join buttons off this.
func (s *Store) PendingByUser(ctx context.Context, userID primitive.ObjectID) ([]models.JoinRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requested_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"user_id": userID,
		"status":  models.JoinRequestPending,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OtherPendingIDs returns the IDs of the user's pending requests other
// than keep. Accepting one request supersedes the rest.
func (s *Store) OtherPendingIDs(ctx context.Context, userID, keep primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"user_id": userID,
		"status":  models.JoinRequestPending,
		"_id":     bson.M{"$ne": keep},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var jr models.JoinRequest
		if err := cur.Decode(&jr); err != nil {
			return nil, err
		}
		ids = append(ids, jr.ID)
	}
	return ids, cur.Err()
}

// DeleteByIDs removes the given requests.
func (s *Store) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes every request the user ever made. Used by account
// deletion.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
