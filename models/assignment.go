// models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment types mirror the scoped notification types.
const (
	AssignmentTypeReview  = "review"
	AssignmentTypeCouncil = "council"
	AssignmentTypePoster  = "poster"
)

// Assignment links a set of teachers to a topic for review, council defense
// or poster session duty.
type Assignment struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Type      string               `json:"type" bson:"type"`
	TopicID   primitive.ObjectID   `json:"topicId" bson:"topicId"`
	MemberIDs []primitive.ObjectID `json:"memberIds" bson:"memberIds"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
}
