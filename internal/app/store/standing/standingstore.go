// internal/app/store/standing/standingstore.go
package standingstore

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

// ErrSessionOpen reports that the user already has a running session.
var ErrSessionOpen = errors.New("a standing session is already running")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("standing_sessions")}
}

// Start opens a new standing session for the user. A user can have at
// most one open session at a time.
func (s *Store) Start(ctx context.Context, userID primitive.ObjectID, at time.Time) (models.StandingSession, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "end_time": nil}).Err()
	if err == nil {
		return models.StandingSession{}, ErrSessionOpen
	}
	if err != mongo.ErrNoDocuments {
		return models.StandingSession{}, err
	}

	sess := models.StandingSession{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		StartTime: at.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.StandingSession{}, err
	}
	return sess, nil
}

// Open returns the user's running session, or mongo.ErrNoDocuments.
func (s *Store) Open(ctx context.Context, userID primitive.ObjectID) (models.StandingSession, error) {
	var sess models.StandingSession
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID, "end_time": nil}).Decode(&sess); err != nil {
		return models.StandingSession{}, err
	}
	return sess, nil
}

// Stop closes the session at the given instant and records the elapsed
// duration in whole seconds. Stopping an already-closed session is a no-op.
func (s *Store) Stop(ctx context.Context, id primitive.ObjectID, at time.Time) (models.StandingSession, error) {
	var sess models.StandingSession
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		return models.StandingSession{}, err
	}
	if sess.EndTime != nil {
		return sess, nil
	}

	end := at.UTC()
	dur := int64(end.Sub(sess.StartTime).Seconds())
	if dur < 0 {
		dur = 0
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"end_time":      end,
		"duration_secs": dur,
	}})
	if err != nil {
		return models.StandingSession{}, err
	}
	sess.EndTime = &end
	sess.DurationSecs = dur
	return sess, nil
}

// TotalSince sums completed standing seconds for the user with sessions
// starting at or after since.
func (s *Store) TotalSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    userID,
			"end_time":   bson.M{"$ne": nil},
			"start_time": bson.M{"$gte": since.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$duration_secs"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cur.Err()
}

// UserStats summarizes one user's completed sessions.
type UserStats struct {
	TotalSecs      int64 // all-time standing seconds
	ActiveDays     int64 // distinct UTC days with at least one session
	AverageSecs    int64 // TotalSecs / ActiveDays
	LongestSecs    int64 // longest single session
	SessionCount   int64
	TodaySecs      int64
	LongestSession *models.StandingSession
}

// StatsForUser computes the dashboard stat block: today's total, average
// per active day, and the longest single session.
func (s *Store) StatsForUser(ctx context.Context, userID primitive.ObjectID, now time.Time) (UserStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":  userID,
			"end_time": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"total":   bson.M{"$sum": "$duration_secs"},
			"longest": bson.M{"$max": "$duration_secs"},
			"count":   bson.M{"$sum": 1},
			"days": bson.M{"$addToSet": bson.M{
				"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$start_time"},
			}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return UserStats{}, err
	}
	defer cur.Close(ctx)

	var stats UserStats
	if cur.Next(ctx) {
		var row struct {
			Total   int64    `bson:"total"`
			Longest int64    `bson:"longest"`
			Count   int64    `bson:"count"`
			Days    []string `bson:"days"`
		}
		if err := cur.Decode(&row); err != nil {
			return UserStats{}, err
		}
		stats.TotalSecs = row.Total
		stats.LongestSecs = row.Longest
		stats.SessionCount = row.Count
		stats.ActiveDays = int64(len(row.Days))
		if stats.ActiveDays > 0 {
			stats.AverageSecs = stats.TotalSecs / stats.ActiveDays
		}
	}
	if err := cur.Err(); err != nil {
		return UserStats{}, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.TotalSince(ctx, userID, midnight)
	if err != nil {
		return UserStats{}, err
	}
	stats.TodaySecs = today

	if stats.LongestSecs > 0 {
		var longest models.StandingSession
		opts := options.FindOne().SetSort(bson.D{{Key: "duration_secs", Value: -1}})
		if err := s.c.FindOne(ctx, bson.M{
			"user_id":  userID,
			"end_time": bson.M{"$ne": nil},
		}, opts).Decode(&longest); err == nil {
			stats.LongestSession = &longest
		}
	}
	return stats, nil
}

// TotalsByUserSince returns standing seconds per user for the given
// members since the period start. Users with no sessions are absent.
func (s *Store) TotalsByUserSince(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    bson.M{"$in": userIDs},
			"end_time":   bson.M{"$ne": nil},
			"start_time": bson.M{"$gte": since.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$user_id",
			"total": bson.M{"$sum": "$duration_secs"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Total int64              `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = row.Total
	}
	return out, cur.Err()
}

// CloseOpenBefore closes sessions that have been running since before
// cutoff, capping each at maxDur. Returns how many were closed.
func (s *Store) CloseOpenBefore(ctx context.Context, cutoff time.Time, maxDur time.Duration) (int64, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"end_time":   nil,
		"start_time": bson.M{"$lt": cutoff.UTC()},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var closed int64
	for cur.Next(ctx) {
		var sess models.StandingSession
		if err := cur.Decode(&sess); err != nil {
			return closed, err
		}
		end := sess.StartTime.Add(maxDur)
		_, err := s.c.UpdateByID(ctx, sess.ID, bson.M{"$set": bson.M{
			"end_time":      end,
			"duration_secs": int64(maxDur.Seconds()),
		}})
		if err != nil {
			return closed, err
		}
		closed++
	}
	return closed, cur.Err()
}

// DeleteByUser removes every session for the user. Used by account deletion.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
