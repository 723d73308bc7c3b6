// models/topic.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topic statuses
const (
	TopicStatusPending  = "pending"
	TopicStatusApproved = "approved"
	TopicStatusRejected = "rejected"
)

// Topic model
type Topic struct {
	ID                 primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title              string               `json:"title" bson:"title"`
	Description        string               `json:"description,omitempty" bson:"description,omitempty"`
	LecturerID         primitive.ObjectID   `json:"lecturerId" bson:"lecturerId"`
	Status             string               `json:"status" bson:"status"`
	MaxGroups          int                  `json:"maxGroups" bson:"maxGroups"`
	RegisteredGroupIDs []primitive.ObjectID `json:"registeredGroupIds" bson:"registeredGroupIds"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// RegisteredGroupsCount returns the current registration count.
func (t *Topic) RegisteredGroupsCount() int {
	return len(t.RegisteredGroupIDs)
}

// IsFull reports whether the topic reached its registration capacity.
func (t *Topic) IsFull() bool {
	return t.MaxGroups > 0 && len(t.RegisteredGroupIDs) >= t.MaxGroups
}

// IsRegistered reports whether the group already holds a slot on the topic.
func (t *Topic) IsRegistered(groupID primitive.ObjectID) bool {
	for _, id := range t.RegisteredGroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
