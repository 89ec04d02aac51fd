// internal/domain/models/standingsession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StandingSession records one standing interval. A session is open
// while EndTime is nil; Stop fills EndTime and DurationSecs. Closed
// sessions are append-only input for the stats aggregations.
type StandingSession struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	StartTime    time.Time          `bson:"start_time" json:"start_time"`
	EndTime      *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
	DurationSecs int64              `bson:"duration_secs,omitempty" json:"duration_secs,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
