// models/student_group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentGroup model
type StudentGroup struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	LeaderID  primitive.ObjectID   `json:"leaderId" bson:"leaderId"`
	MemberIDs []primitive.ObjectID `json:"memberIds" bson:"memberIds"`
	TopicID   *primitive.ObjectID  `json:"topicId,omitempty" bson:"topicId,omitempty"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// HasMember reports whether userID belongs to the group.
func (g *StudentGroup) HasMember(userID primitive.ObjectID) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// SendMessageRequest is the body for posting a chat message to a group.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}
