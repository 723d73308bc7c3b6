package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/websocket"
)

type fakeNotificationStore struct {
	inserted []*models.Notification
}

func (s *fakeNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.inserted = append(s.inserted, n)
	return nil
}

type fakeThreadStore struct {
	counts  map[primitive.ObjectID]int
	appends int
}

func (s *fakeThreadStore) Append(ctx context.Context, groupID primitive.ObjectID, groupName string, recipientID primitive.ObjectID, sender models.MessageSender, message models.ChatMessage) (*models.MessageNotification, error) {
	if s.counts == nil {
		s.counts = make(map[primitive.ObjectID]int)
	}
	s.counts[recipientID]++
	s.appends++
	return &models.MessageNotification{
		GroupID:           groupID,
		GroupName:         groupName,
		RecipientID:       recipientID,
		Sender:            sender,
		MessagesCount:     s.counts[recipientID],
		LatestMessageTime: message.Timestamp,
	}, nil
}

type fakeAssignmentStore struct {
	members []primitive.ObjectID
}

func (s *fakeAssignmentStore) MembersForTopic(ctx context.Context, assignmentType string, topicID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.members, nil
}

type fakeGroupStore struct {
	members []primitive.ObjectID
}

func (s *fakeGroupStore) MembersOfGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.members, nil
}

type fakeTopicStore struct {
	topic *models.Topic
}

func (s *fakeTopicStore) FindByID(ctx context.Context, topicID primitive.ObjectID) (*models.Topic, error) {
	return s.topic, nil
}

type fakeUserStore struct{}

func (fakeUserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return nil, nil
}

type fakeUnreadCache struct {
	invalidated []primitive.ObjectID
	userSets    [][]primitive.ObjectID
	broadcasts  int
}

func (c *fakeUnreadCache) Invalidate(userID primitive.ObjectID) {
	c.invalidated = append(c.invalidated, userID)
}

func (c *fakeUnreadCache) InvalidateUsers(userIDs []primitive.ObjectID) {
	c.userSets = append(c.userSets, userIDs)
}

func (c *fakeUnreadCache) InvalidateBroadcast() {
	c.broadcasts++
}

type emitted struct {
	room   string
	userID primitive.ObjectID
	event  websocket.Event
}

type fakeEmitter struct {
	roomEvents     []emitted
	roomUserEvents []emitted
	userEvents     []emitted
}

func (e *fakeEmitter) EmitToRoom(room string, event websocket.Event) {
	e.roomEvents = append(e.roomEvents, emitted{room: room, event: event})
}

func (e *fakeEmitter) EmitToRoomUser(room string, userID primitive.ObjectID, event websocket.Event) {
	e.roomUserEvents = append(e.roomUserEvents, emitted{room: room, userID: userID, event: event})
}

func (e *fakeEmitter) EmitToUser(userID primitive.ObjectID, event websocket.Event) error {
	e.userEvents = append(e.userEvents, emitted{userID: userID, event: event})
	return nil
}

func newTestDispatcher(notifs *fakeNotificationStore, threads *fakeThreadStore, hub *fakeEmitter) *Dispatcher {
	return NewDispatcher(notifs, threads, &fakeAssignmentStore{}, &fakeGroupStore{}, &fakeTopicStore{}, fakeUserStore{}, hub, nil, nil, nil)
}

func TestDispatchNotificationTeacherType(t *testing.T) {
	notifs := &fakeNotificationStore{}
	hub := &fakeEmitter{}
	d := newTestDispatcher(notifs, &fakeThreadStore{}, hub)

	req := models.CreateNotificationRequest{
		Title:   "Lịch bảo vệ",
		Message: "Hội đồng họp thứ hai",
		Type:    models.NotificationTypeTeacher,
	}

	notification, err := d.DispatchNotification(context.Background(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.Empty(t, notification.Recipients, "role-scoped types resolve at read time")

	require.Len(t, hub.roomEvents, 1)
	require.Equal(t, "role:teacher", hub.roomEvents[0].room)
	require.Equal(t, websocket.EventReceiveNotification, hub.roomEvents[0].event.Event)
	require.Empty(t, hub.userEvents)
}

func TestDispatchNotificationAllReachesBothRoles(t *testing.T) {
	notifs := &fakeNotificationStore{}
	hub := &fakeEmitter{}
	d := newTestDispatcher(notifs, &fakeThreadStore{}, hub)

	req := models.CreateNotificationRequest{
		Title:   "Thông báo chung",
		Message: "Nộp báo cáo tiến độ",
		Type:    models.NotificationTypeAll,
	}

	_, err := d.DispatchNotification(context.Background(), req, primitive.NewObjectID())
	require.NoError(t, err)

	rooms := []string{hub.roomEvents[0].room, hub.roomEvents[1].room}
	require.ElementsMatch(t, []string{"role:student", "role:teacher"}, rooms)
}

func TestDispatchNotificationReviewResolvesAssignment(t *testing.T) {
	members := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	notifs := &fakeNotificationStore{}
	hub := &fakeEmitter{}
	d := NewDispatcher(notifs, &fakeThreadStore{}, &fakeAssignmentStore{members: members},
		&fakeGroupStore{}, &fakeTopicStore{}, fakeUserStore{}, hub, nil, nil, nil)

	req := models.CreateNotificationRequest{
		Title:    "Phân công phản biện",
		Message:  "Bạn được phân công phản biện đề tài",
		Type:     models.NotificationTypeReview,
		TargetID: primitive.NewObjectID().Hex(),
	}

	notification, err := d.DispatchNotification(context.Background(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.Equal(t, members, notification.Recipients)

	require.Empty(t, hub.roomEvents)
	require.Len(t, hub.userEvents, 2)
	delivered := []primitive.ObjectID{hub.userEvents[0].userID, hub.userEvents[1].userID}
	require.ElementsMatch(t, members, delivered)
}

func TestDispatchNotificationTopicResolvesRegisteredGroups(t *testing.T) {
	members := []primitive.ObjectID{primitive.NewObjectID()}
	topic := &models.Topic{
		ID:                 primitive.NewObjectID(),
		RegisteredGroupIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}
	notifs := &fakeNotificationStore{}
	hub := &fakeEmitter{}
	d := NewDispatcher(notifs, &fakeThreadStore{}, &fakeAssignmentStore{},
		&fakeGroupStore{members: members}, &fakeTopicStore{topic: topic}, fakeUserStore{}, hub, nil, nil, nil)

	req := models.CreateNotificationRequest{
		Title:    "Đề tài được duyệt",
		Message:  "Đề tài của nhóm bạn đã được duyệt",
		Type:     models.NotificationTypeTopic,
		TargetID: topic.ID.Hex(),
	}

	notification, err := d.DispatchNotification(context.Background(), req, primitive.NewObjectID())
	require.NoError(t, err)
	require.Equal(t, members, notification.Recipients)
}

func TestDispatchNotificationScopedTypeRequiresTarget(t *testing.T) {
	notifs := &fakeNotificationStore{}
	d := newTestDispatcher(notifs, &fakeThreadStore{}, &fakeEmitter{})

	req := models.CreateNotificationRequest{
		Title:   "Phân công hội đồng",
		Message: "Thiếu đề tài",
		Type:    models.NotificationTypeCouncil,
	}

	_, err := d.DispatchNotification(context.Background(), req, primitive.NewObjectID())
	require.Error(t, err)
	require.Empty(t, notifs.inserted, "nothing is persisted when resolution fails")
}

func groupOf(memberIDs ...primitive.ObjectID) *models.StudentGroup {
	return &models.StudentGroup{
		ID:        primitive.NewObjectID(),
		Name:      "Nhóm 12",
		LeaderID:  memberIDs[0],
		MemberIDs: memberIDs,
	}
}

func TestDispatchGroupMessageSkipsSender(t *testing.T) {
	sender := models.User{ID: primitive.NewObjectID(), FullName: "Nguyễn Văn A", Role: models.RoleStudent}
	memberB := primitive.NewObjectID()
	memberC := primitive.NewObjectID()
	group := groupOf(sender.ID, memberB, memberC)

	threads := &fakeThreadStore{}
	hub := &fakeEmitter{}
	d := newTestDispatcher(&fakeNotificationStore{}, threads, hub)

	err := d.DispatchGroupMessage(context.Background(), group, sender, "họp nhóm 7h tối nay")
	require.NoError(t, err)

	require.Equal(t, 2, threads.appends, "one thread append per non-sender member")
	require.Len(t, hub.roomUserEvents, 2)

	room := websocket.GroupRoom(group.ID)
	targets := make([]primitive.ObjectID, 0, 2)
	for _, e := range hub.roomUserEvents {
		require.Equal(t, room, e.room)
		require.Equal(t, websocket.EventNewMessageNotification, e.event.Event)
		require.NotEqual(t, sender.ID, e.userID)
		targets = append(targets, e.userID)
	}
	require.ElementsMatch(t, []primitive.ObjectID{memberB, memberC}, targets)
}

func TestDispatchGroupMessageCoalescesIntoOneThread(t *testing.T) {
	sender := models.User{ID: primitive.NewObjectID(), FullName: "Trần Thị B", Role: models.RoleStudent}
	member := primitive.NewObjectID()
	group := groupOf(sender.ID, member)

	threads := &fakeThreadStore{}
	hub := &fakeEmitter{}
	d := newTestDispatcher(&fakeNotificationStore{}, threads, hub)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.DispatchGroupMessage(context.Background(), group, sender, "tin nhắn"))
	}

	require.Equal(t, 3, threads.counts[member], "messages accumulate in one thread")

	last := hub.roomUserEvents[len(hub.roomUserEvents)-1]
	payload, ok := last.event.Data.(websocket.NewMessageNotificationPayload)
	require.True(t, ok)
	require.Equal(t, 3, payload.UnreadCount)
	require.Equal(t, group.Name, payload.GroupName)
}

func TestNotifyTopicGroupCount(t *testing.T) {
	hub := &fakeEmitter{}
	d := newTestDispatcher(&fakeNotificationStore{}, &fakeThreadStore{}, hub)

	topic := &models.Topic{
		ID:                 primitive.NewObjectID(),
		MaxGroups:          3,
		RegisteredGroupIDs: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
	}

	d.NotifyTopicGroupCount(topic)

	require.Len(t, hub.roomEvents, 1)
	require.Equal(t, websocket.ApprovedTopicsRoom, hub.roomEvents[0].room)

	payload, ok := hub.roomEvents[0].event.Data.(websocket.TopicGroupCountPayload)
	require.True(t, ok)
	require.Equal(t, 2, payload.RegisteredGroupsCount)
	require.Equal(t, topic.ID.Hex(), payload.TopicID)
}

func TestDispatchNotificationRoleTypeInvalidatesAllCachedCounters(t *testing.T) {
	cache := &fakeUnreadCache{}
	d := NewDispatcher(&fakeNotificationStore{}, &fakeThreadStore{}, &fakeAssignmentStore{},
		&fakeGroupStore{}, &fakeTopicStore{}, fakeUserStore{}, &fakeEmitter{}, nil, nil, cache)

	_, err := d.DispatchNotification(context.Background(), models.CreateNotificationRequest{
		Title:   "Lịch nộp quyển",
		Message: "Hạn chót thứ sáu",
		Type:    models.NotificationTypeStudent,
	}, primitive.NewObjectID())
	require.NoError(t, err)

	// Role broadcasts have no enumerable recipient set; the cached counter
	// of every affected user must still go stale immediately, or the badge
	// disagrees with the list until the TTL expires.
	require.Equal(t, 1, cache.broadcasts)
	require.Empty(t, cache.userSets)
}

func TestDispatchNotificationScopedTypeInvalidatesRecipients(t *testing.T) {
	members := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	cache := &fakeUnreadCache{}
	d := NewDispatcher(&fakeNotificationStore{}, &fakeThreadStore{}, &fakeAssignmentStore{members: members},
		&fakeGroupStore{}, &fakeTopicStore{}, fakeUserStore{}, &fakeEmitter{}, nil, nil, cache)

	_, err := d.DispatchNotification(context.Background(), models.CreateNotificationRequest{
		Title:    "Phân công phản biện",
		Message:  "Xem chi tiết trong hệ thống",
		Type:     models.NotificationTypeReview,
		TargetID: primitive.NewObjectID().Hex(),
	}, primitive.NewObjectID())
	require.NoError(t, err)

	require.Zero(t, cache.broadcasts)
	require.Len(t, cache.userSets, 1)
	require.ElementsMatch(t, members, cache.userSets[0])
}

func TestDispatchGroupMessageInvalidatesEachRecipient(t *testing.T) {
	sender := models.User{ID: primitive.NewObjectID(), FullName: "Lê Văn C", Role: models.RoleStudent}
	memberB := primitive.NewObjectID()
	memberC := primitive.NewObjectID()
	group := groupOf(sender.ID, memberB, memberC)

	cache := &fakeUnreadCache{}
	d := NewDispatcher(&fakeNotificationStore{}, &fakeThreadStore{}, &fakeAssignmentStore{},
		&fakeGroupStore{}, &fakeTopicStore{}, fakeUserStore{}, &fakeEmitter{}, nil, nil, cache)

	require.NoError(t, d.DispatchGroupMessage(context.Background(), group, sender, "đã nộp bản nháp"))

	require.ElementsMatch(t, []primitive.ObjectID{memberB, memberC}, cache.invalidated)
}

func TestDispatchNotificationSetsCreatedAt(t *testing.T) {
	notifs := &fakeNotificationStore{}
	d := newTestDispatcher(notifs, &fakeThreadStore{}, &fakeEmitter{})

	before := time.Now()
	notification, err := d.DispatchNotification(context.Background(), models.CreateNotificationRequest{
		Title:   "t",
		Message: "m",
		Type:    models.NotificationTypeStudent,
	}, primitive.NewObjectID())
	require.NoError(t, err)
	require.False(t, notification.CreatedAt.Before(before))
}
