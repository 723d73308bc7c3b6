// models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. The first three select recipients by role; the rest
// resolve to the members of an assignment on the target topic.
const (
	NotificationTypeAll     = "all"
	NotificationTypeStudent = "student"
	NotificationTypeTeacher = "teacher"
	NotificationTypeTopic   = "topic"
	NotificationTypeReview  = "review"
	NotificationTypeCouncil = "council"
	NotificationTypePoster  = "poster"
)

// Notification is a broadcast/admin-authored announcement. Read state is a
// per-recipient receipt list: a notification stays unread for a user until
// the user's id lands in ReadBy, and the transition is one-way.
type Notification struct {
	ID         primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title      string               `json:"title" bson:"title"`
	Message    string               `json:"message" bson:"message"`
	Type       string               `json:"type" bson:"type"`
	TargetID   *primitive.ObjectID  `json:"targetId,omitempty" bson:"targetId,omitempty"`
	CreatedBy  primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
	Recipients []primitive.ObjectID `json:"-" bson:"recipients,omitempty"` // resolved set for assignment-scoped types
	ReadBy     []primitive.ObjectID `json:"-" bson:"readBy"`
	IsRead     bool                 `json:"isRead" bson:"-"` // filled in per caller
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
}

// IsReadBy reports whether userID has a read receipt on the notification.
func (n *Notification) IsReadBy(userID primitive.ObjectID) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// AppliesTo reports whether the notification should be visible to a user,
// applying the type's recipient predicate at read time. This is the
// in-memory twin of repositories.RecipientFilter (applicableRoleTypes);
// a type added here must be added to that filter too, and vice versa.
func (n *Notification) AppliesTo(userID primitive.ObjectID, role string) bool {
	switch n.Type {
	case NotificationTypeAll:
		return role != RoleAdmin
	case NotificationTypeStudent:
		return role == RoleStudent
	case NotificationTypeTeacher:
		return role == RoleTeacher
	default:
		for _, id := range n.Recipients {
			if id == userID {
				return true
			}
		}
		return false
	}
}

// CreateNotificationRequest is the body for the admin/teacher create endpoint.
type CreateNotificationRequest struct {
	Title    string `json:"title" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=all student teacher topic review council poster"`
	TargetID string `json:"targetId,omitempty"`
}
