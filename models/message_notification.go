// models/message_notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage is one entry in a coalesced message thread.
type ChatMessage struct {
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// MessageSender identifies who produced the latest message of a thread.
type MessageSender struct {
	ID       primitive.ObjectID `json:"id" bson:"id"`
	FullName string             `json:"fullName" bson:"fullName"`
	Role     string             `json:"role" bson:"role"`
}

// MessageNotification is an unread chat thread for one recipient of one
// group. Messages accumulate under the same document until the recipient
// marks the group read, which clears the whole thread at once.
type MessageNotification struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	GroupID           primitive.ObjectID `json:"groupId" bson:"groupId"`
	GroupName         string             `json:"groupName" bson:"groupName"`
	RecipientID       primitive.ObjectID `json:"recipientId" bson:"recipientId"`
	Sender            MessageSender      `json:"sender" bson:"sender"`
	Messages          []ChatMessage      `json:"messages" bson:"messages"`
	MessagesCount     int                `json:"messagesCount" bson:"messagesCount"`
	LatestMessageTime time.Time          `json:"latestMessageTime" bson:"latestMessageTime"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
}
