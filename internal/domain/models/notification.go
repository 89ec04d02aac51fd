// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an admin-facing record prompting a decision on a
// JoinRequest. JoinRequestID is a back-reference, not ownership: the
// request outlives the notification unless both are retired together
// during supersession.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`     // recipient (team admin)
	SenderID      primitive.ObjectID `bson:"sender_id" json:"sender_id"` // requester
	Message       string             `bson:"message" json:"message"`
	Read          bool               `bson:"read" json:"read"`
	JoinRequestID primitive.ObjectID `bson:"join_request_id" json:"join_request_id"`
	TeamID        primitive.ObjectID `bson:"team_id" json:"team_id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
