// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join request statuses. A request transitions out of pending exactly
// once: to accepted, to rejected, or to deletion when another request
// from the same user is accepted first (supersession).
const (
	JoinRequestPending  = "pending"
	JoinRequestAccepted = "accepted"
	JoinRequestRejected = "rejected"
)

// JoinRequest records a user's request to join a team. The admin acts
// on it through the paired Notification.
type JoinRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID      primitive.ObjectID `bson:"team_id" json:"team_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status      string             `bson:"status" json:"status"`
	RequestedAt time.Time          `bson:"requested_at" json:"requested_at"`
}
