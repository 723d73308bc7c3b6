// services/dispatcher.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/websocket"
)

// Store dependencies of the dispatcher. Narrow interfaces so handler tests
// can run against mocks instead of a live MongoDB.

type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
}

type ThreadStore interface {
	Append(ctx context.Context, groupID primitive.ObjectID, groupName string, recipientID primitive.ObjectID, sender models.MessageSender, message models.ChatMessage) (*models.MessageNotification, error)
}

type AssignmentStore interface {
	MembersForTopic(ctx context.Context, assignmentType string, topicID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type GroupStore interface {
	MembersOfGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
}

type TopicStore interface {
	FindByID(ctx context.Context, topicID primitive.ObjectID) (*models.Topic, error)
}

type UserStore interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Emitter is the slice of the websocket hub the dispatcher pushes through.
type Emitter interface {
	EmitToRoom(room string, event websocket.Event)
	EmitToRoomUser(room string, userID primitive.ObjectID, event websocket.Event)
	EmitToUser(userID primitive.ObjectID, event websocket.Event) error
}

// Mailer and Pusher are the out-of-band channels; both are best-effort and
// optional (nil disables them).

type Mailer interface {
	SendAnnouncement(users []models.User, title, message string) error
}

type Pusher interface {
	Push(user models.User, title, message string, data map[string]string) error
}

// UnreadInvalidator drops derived unread counters when a dispatch changes
// what a user should see. *UnreadCache implements it; nil disables caching.
type UnreadInvalidator interface {
	Invalidate(userID primitive.ObjectID)
	InvalidateUsers(userIDs []primitive.ObjectID)
	InvalidateBroadcast()
}

// Dispatcher persists notification records, resolves their recipient sets
// and pushes them to the live connections that should see them.
type Dispatcher struct {
	notifications NotificationStore
	threads       ThreadStore
	assignments   AssignmentStore
	groups        GroupStore
	topics        TopicStore
	users         UserStore
	hub           Emitter
	mailer        Mailer
	pusher        Pusher
	cache         UnreadInvalidator
}

func NewDispatcher(notifications NotificationStore, threads ThreadStore, assignments AssignmentStore, groups GroupStore, topics TopicStore, users UserStore, hub Emitter, mailer Mailer, pusher Pusher, cache UnreadInvalidator) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		threads:       threads,
		assignments:   assignments,
		groups:        groups,
		topics:        topics,
		users:         users,
		hub:           hub,
		mailer:        mailer,
		pusher:        pusher,
		cache:         cache,
	}
}

// DispatchNotification persists a broadcast notification and pushes it to
// its recipients: role rooms for role-scoped types, per-user delivery for
// assignment-scoped ones.
func (d *Dispatcher) DispatchNotification(ctx context.Context, req models.CreateNotificationRequest, createdBy primitive.ObjectID) (*models.Notification, error) {
	notification := &models.Notification{
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}

	switch req.Type {
	case models.NotificationTypeAll, models.NotificationTypeStudent, models.NotificationTypeTeacher:
		// Recipients are resolved at read time by role predicate
	default:
		targetID, err := primitive.ObjectIDFromHex(req.TargetID)
		if err != nil {
			return nil, fmt.Errorf("notification type %q requires a valid targetId", req.Type)
		}
		recipients, err := d.resolveScopedRecipients(ctx, req.Type, targetID)
		if err != nil {
			return nil, err
		}
		notification.TargetID = &targetID
		notification.Recipients = recipients
	}

	if err := d.notifications.Insert(ctx, notification); err != nil {
		return nil, err
	}

	d.emitNotification(notification)
	d.invalidateUnread(notification)

	// Email and FCM are side channels; failures must not fail the dispatch
	go d.notifyOutOfBand(notification)

	return notification, nil
}

func (d *Dispatcher) resolveScopedRecipients(ctx context.Context, notifType string, targetID primitive.ObjectID) ([]primitive.ObjectID, error) {
	switch notifType {
	case models.NotificationTypeReview, models.NotificationTypeCouncil, models.NotificationTypePoster:
		return d.assignments.MembersForTopic(ctx, notifType, targetID)
	case models.NotificationTypeTopic:
		// Students of every group registered on the topic
		topic, err := d.topics.FindByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if len(topic.RegisteredGroupIDs) == 0 {
			return nil, nil
		}
		return d.groups.MembersOfGroups(ctx, topic.RegisteredGroupIDs)
	default:
		return nil, fmt.Errorf("unknown notification type %q", notifType)
	}
}

// invalidateUnread drops the cached counters the new notification makes
// stale. Role-scoped types reach users the dispatcher cannot enumerate, so
// they invalidate by version bump instead of per-user deletes; without it
// a cached counter would disagree with the list until the TTL expired.
func (d *Dispatcher) invalidateUnread(notification *models.Notification) {
	if d.cache == nil {
		return
	}
	switch notification.Type {
	case models.NotificationTypeAll, models.NotificationTypeStudent, models.NotificationTypeTeacher:
		d.cache.InvalidateBroadcast()
	default:
		d.cache.InvalidateUsers(notification.Recipients)
	}
}

func (d *Dispatcher) emitNotification(notification *models.Notification) {
	event := websocket.Event{
		Event: websocket.EventReceiveNotification,
		Data: websocket.ReceiveNotificationPayload{
			ID:      notification.ID.Hex(),
			Type:    notification.Type,
			Title:   notification.Title,
			Message: notification.Message,
		},
	}

	switch notification.Type {
	case models.NotificationTypeAll:
		d.hub.EmitToRoom(websocket.RoleRoom(models.RoleStudent), event)
		d.hub.EmitToRoom(websocket.RoleRoom(models.RoleTeacher), event)
	case models.NotificationTypeStudent:
		d.hub.EmitToRoom(websocket.RoleRoom(models.RoleStudent), event)
	case models.NotificationTypeTeacher:
		d.hub.EmitToRoom(websocket.RoleRoom(models.RoleTeacher), event)
	default:
		for _, recipientID := range notification.Recipients {
			// Best-effort: disconnected recipients recover via polling
			_ = d.hub.EmitToUser(recipientID, event)
		}
	}
}

func (d *Dispatcher) notifyOutOfBand(notification *models.Notification) {
	if len(notification.Recipients) == 0 || (d.mailer == nil && d.pusher == nil) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	users, err := d.users.FindByIDs(ctx, notification.Recipients)
	if err != nil {
		log.Printf("Error loading recipients for out-of-band delivery: %v", err)
		return
	}

	if d.mailer != nil {
		if err := d.mailer.SendAnnouncement(users, notification.Title, notification.Message); err != nil {
			log.Printf("Error sending announcement email: %v", err)
		}
	}

	if d.pusher != nil {
		data := map[string]string{
			"type":           notification.Type,
			"notificationId": notification.ID.Hex(),
			"timestamp":      time.Now().Format(time.RFC3339),
		}
		for _, user := range users {
			if user.FCMToken == "" {
				continue
			}
			if err := d.pusher.Push(user, notification.Title, notification.Message, data); err != nil {
				log.Printf("Error sending FCM push to %s: %v", user.ID.Hex(), err)
			}
		}
	}
}

// DispatchGroupMessage coalesces a chat message into each member's unread
// thread and pushes newMessageNotification to the group's room, excluding
// the sender. Each member gets their own unread count in the payload.
func (d *Dispatcher) DispatchGroupMessage(ctx context.Context, group *models.StudentGroup, sender models.User, content string) error {
	message := models.ChatMessage{
		Content:   content,
		Timestamp: time.Now(),
	}
	messageSender := models.MessageSender{
		ID:       sender.ID,
		FullName: sender.FullName,
		Role:     sender.Role,
	}

	room := websocket.GroupRoom(group.ID)

	for _, memberID := range group.MemberIDs {
		if memberID == sender.ID {
			continue
		}

		thread, err := d.threads.Append(ctx, group.ID, group.Name, memberID, messageSender, message)
		if err != nil {
			return err
		}

		if d.cache != nil {
			d.cache.Invalidate(memberID)
		}

		d.hub.EmitToRoomUser(room, memberID, websocket.Event{
			Event: websocket.EventNewMessageNotification,
			Data: websocket.NewMessageNotificationPayload{
				GroupID:     group.ID.Hex(),
				GroupName:   group.Name,
				Sender:      messageSender,
				Message:     content,
				UnreadCount: thread.MessagesCount,
			},
		})
	}

	return nil
}

// NotifyTopicGroupCount pushes the current registration count of a topic to
// everyone watching the approved topics list.
func (d *Dispatcher) NotifyTopicGroupCount(topic *models.Topic) {
	d.hub.EmitToRoom(websocket.ApprovedTopicsRoom, websocket.Event{
		Event: websocket.EventTopicGroupCountUpdate,
		Data: websocket.TopicGroupCountPayload{
			TopicID:               topic.ID.Hex(),
			RegisteredGroupsCount: topic.RegisteredGroupsCount(),
		},
	})
}
