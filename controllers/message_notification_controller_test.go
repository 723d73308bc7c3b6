package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/services"
)

type threadKey struct {
	groupID     primitive.ObjectID
	recipientID primitive.ObjectID
}

type fakeMessageThreadStore struct {
	threads map[threadKey]*models.MessageNotification
}

func (s *fakeMessageThreadStore) ListForUser(ctx context.Context, recipientID primitive.ObjectID) ([]models.MessageNotification, error) {
	var out []models.MessageNotification
	for key, thread := range s.threads {
		if key.recipientID == recipientID {
			out = append(out, *thread)
		}
	}
	return out, nil
}

func (s *fakeMessageThreadStore) MarkRead(ctx context.Context, groupID, recipientID primitive.ObjectID) error {
	// Mirrors DeleteMany: clearing an absent thread is not an error
	delete(s.threads, threadKey{groupID: groupID, recipientID: recipientID})
	return nil
}

func TestMarkNotificationsReadClearsThreadOnce(t *testing.T) {
	e := echo.New()
	userID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	otherGroupID := primitive.NewObjectID()

	store := &fakeMessageThreadStore{
		threads: map[threadKey]*models.MessageNotification{
			{groupID: groupID, recipientID: userID}: {
				GroupID:       groupID,
				RecipientID:   userID,
				MessagesCount: 3,
			},
			{groupID: otherGroupID, recipientID: userID}: {
				GroupID:       otherGroupID,
				RecipientID:   userID,
				MessagesCount: 1,
			},
		},
	}
	aggregator := services.NewUnreadAggregator(nil, nil, services.NewUnreadCache(nil))
	mc := NewMessageNotificationController(store, aggregator)

	// Reading a group clears that whole thread and only that thread;
	// a second mark is a no-op success.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPut, "/api/messageNotification/mark-notifications-read?groupId="+groupID.Hex(), nil)
		c, rec := authedContext(e, req, userID, models.RoleStudent)

		require.NoError(t, mc.MarkNotificationsRead(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, store.threads, 1)
	remaining, ok := store.threads[threadKey{groupID: otherGroupID, recipientID: userID}]
	require.True(t, ok, "threads of other groups stay untouched")
	require.Equal(t, 1, remaining.MessagesCount)
}

func TestMarkNotificationsReadRequiresGroupID(t *testing.T) {
	e := echo.New()
	store := &fakeMessageThreadStore{threads: map[threadKey]*models.MessageNotification{}}
	aggregator := services.NewUnreadAggregator(nil, nil, services.NewUnreadCache(nil))
	mc := NewMessageNotificationController(store, aggregator)

	req := httptest.NewRequest(http.MethodPut, "/api/messageNotification/mark-notifications-read", nil)
	c, rec := authedContext(e, req, primitive.NewObjectID(), models.RoleStudent)

	require.NoError(t, mc.MarkNotificationsRead(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
