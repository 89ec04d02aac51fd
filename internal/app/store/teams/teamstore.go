// internal/app/store/teams/teamstore.go
package teamstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/standhub/internal/app/system/normalize"
	"github.com/dalemusser/standhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateTeamName reports that a team with the same folded name
// already exists. There is no unique index backing this; callers learn
// about it from NameExists, so two concurrent creates can still both
// succeed.
var ErrDuplicateTeamName = errors.New("a team with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

// Collection exposes the raw collection for multi-collection transactions.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// NameExists reports whether any team already uses the folded form of name.
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(normalize.TeamName(name))}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new team with the creator as sole member and admin.
// It does not check name uniqueness; callers run NameExists first.
func (s *Store) Create(ctx context.Context, name string, adminID primitive.ObjectID) (models.Team, error) {
	now := time.Now().UTC()
	t := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      normalize.TeamName(name),
		AdminID:   adminID,
		Members:   []primitive.ObjectID{adminID},
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.NameCI = text.Fold(t.Name)
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// GetByMember returns the team the user belongs to, or mongo.ErrNoDocuments.
// The single-team invariant means at most one document can match.
func (s *Store) GetByMember(ctx context.Context, userID primitive.ObjectID) (models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"members": userID}).Decode(&t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// FindByMember returns every team whose member array contains the user.
// Under the single-team invariant this is zero or one team, but leave-all
// sweeps every match so a violated invariant self-heals.
func (s *Store) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// List returns teams sorted by name, optionally filtered by a folded
// name prefix.
func (s *Store) List(ctx context.Context, search string) ([]models.Team, error) {
	filter := bson.M{}
	if q := normalize.QueryParam(search); q != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + escapeRegex(text.Fold(q))}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember adds the user to the team's member set.
func (s *Store) AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, teamID, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// RemoveMember pulls the user out of the team's member set.
func (s *Store) RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, teamID, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// SetAdmin points the team at a new admin.
func (s *Store) SetAdmin(ctx context.Context, teamID, adminID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, teamID, bson.M{
		"$set": bson.M{"admin_id": adminID, "updated_at": time.Now().UTC()},
	})
	return err
}

// Delete removes a team by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// escapeRegex quotes characters that would otherwise be interpreted by
// the Mongo regex engine.
func escapeRegex(s string) string {
	const special = `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		for _, sp := range special {
			if r == sp {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}
