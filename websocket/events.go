package websocket

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/models"
)

// Server-to-client event names (wire contract with the React client)
const (
	EventConnected              = "connected"
	EventUnreadSync             = "unreadSync"
	EventNewMessageNotification = "newMessageNotification"
	EventReceiveNotification    = "receiveNotification"
	EventTopicGroupCountUpdate  = "topicGroupCountUpdate"
)

// Client-to-server actions
const (
	ActionJoinGroups             = "joinGroups"
	ActionJoinApprovedTopicsList = "joinApprovedTopicsList"
)

// Event is the envelope for every message pushed over a socket.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ClientAction is what the client sends on its side of the socket.
type ClientAction struct {
	Action string `json:"action"`
}

// ConnectedPayload acknowledges a successful handshake.
type ConnectedPayload struct {
	ConnID string `json:"connId"`
	UserID string `json:"userId"`
}

// UnreadSyncPayload carries the caller's current counters. Sent right after
// connect so a reconnecting client recovers state before incremental pushes.
type UnreadSyncPayload struct {
	NotificationCount int64 `json:"notificationCount"`
	MessageCount      int64 `json:"messageCount"`
}

// NewMessageNotificationPayload announces a chat message to group members.
type NewMessageNotificationPayload struct {
	GroupID     string               `json:"groupId"`
	GroupName   string               `json:"groupName"`
	Sender      models.MessageSender `json:"sender"`
	Message     string               `json:"message"`
	UnreadCount int                  `json:"unreadCount"`
}

// ReceiveNotificationPayload announces a broadcast notification.
type ReceiveNotificationPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// TopicGroupCountPayload announces a change in a topic's registration count.
type TopicGroupCountPayload struct {
	TopicID               string `json:"topicId"`
	RegisteredGroupsCount int    `json:"registeredGroupsCount"`
}

// Room name helpers. Rooms are logical broadcast channels: one per student
// group, one per role, and one shared list of approved topics.

func GroupRoom(groupID primitive.ObjectID) string {
	return "group:" + groupID.Hex()
}

func RoleRoom(role string) string {
	switch role {
	case models.RoleStudent:
		return "role:student"
	case models.RoleTeacher:
		return "role:teacher"
	default:
		return "role:" + role
	}
}

const ApprovedTopicsRoom = "topics:approved"
