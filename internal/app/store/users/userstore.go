package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/standhub/internal/app/system/inputval"
	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/app/system/status"
	"github.com/dalemusser/standhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrDuplicateUsername is returned when the requested username is already taken.
	ErrDuplicateUsername = errors.New("this username is already taken")
	// ErrUsernameLooksLikeEmail is returned when a username is shaped like an email address.
	ErrUsernameLooksLikeEmail = errors.New("username cannot be an email address")
	errBadAuthMethod          = errors.New(`auth_method must be "internal"|"google"`)
	errBadStatus              = errors.New(`status must be "active"|"disabled"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by case-insensitive username. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username_ci": text.Fold(normalize.Username(username))}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// Team membership lives on team documents, never here.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	if u.Status == "" {
		u.Status = status.Active
	}

	if inputval.LooksLikeEmail(u.Username) {
		return models.User{}, ErrUsernameLooksLikeEmail
	}

	switch u.AuthMethod {
	case "internal", "google":
		// ok
	default:
		return models.User{}, errBadAuthMethod
	}

	if !status.IsValid(u.Status) {
		return models.User{}, errBadStatus
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupError(err)
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateUsername changes a user's display name. Returns ErrDuplicateUsername
// if another user already holds the folded form.
func (s *Store) UpdateUsername(ctx context.Context, id primitive.ObjectID, username string) error {
	username = normalize.Username(username)
	if inputval.LooksLikeEmail(username) {
		return ErrUsernameLooksLikeEmail
	}

	set := bson.M{
		"username":    username,
		"username_ci": text.Fold(username),
		"updated_at":  time.Now(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// Delete removes a user document. The caller is responsible for cascading
// deletes (standing sessions, notifications, join requests, team membership).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UsernameExistsForOther checks if a username already exists for a user other than the given ID.
func (s *Store) UsernameExistsForOther(ctx context.Context, username string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"username_ci": text.Fold(normalize.Username(username)),
		"_id":         bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// GetManyByID loads the given users and returns them keyed by ID. Missing
// IDs are simply absent from the map.
func (s *Store) GetManyByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, cur.Err()
}

// dupError maps a Mongo duplicate-key error onto the sentinel for whichever
// unique index tripped.
func dupError(err error) error {
	if strings.Contains(err.Error(), "username_ci") {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}
