package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/middleware"
	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/services"
)

type fakeNotificationStore struct {
	notifications map[primitive.ObjectID]*models.Notification
	markCalls     int
}

func (s *fakeNotificationStore) ListForUser(ctx context.Context, userID primitive.ObjectID, role string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.AppliesTo(userID, role) {
			copied := *n
			copied.IsRead = n.IsReadBy(userID)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	s.markCalls++
	n, ok := s.notifications[notificationID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if !n.IsReadBy(userID) {
		n.ReadBy = append(n.ReadBy, userID)
	}
	return nil
}

func (s *fakeNotificationStore) Delete(ctx context.Context, notificationID primitive.ObjectID) error {
	if _, ok := s.notifications[notificationID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.notifications, notificationID)
	return nil
}

func authedContext(e *echo.Echo, req *http.Request, userID primitive.ObjectID, role string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.JwtCustomClaims{
		UserID: userID.Hex(),
		Role:   role,
	}))
	return c, rec
}

func newTestNotificationController(store *fakeNotificationStore) *NotificationController {
	aggregator := services.NewUnreadAggregator(nil, nil, services.NewUnreadCache(nil))
	return NewNotificationController(store, nil, aggregator)
}

func TestMarkNotificationReadIsIdempotent(t *testing.T) {
	e := echo.New()
	userID := primitive.NewObjectID()
	notifID := primitive.NewObjectID()
	store := &fakeNotificationStore{
		notifications: map[primitive.ObjectID]*models.Notification{
			notifID: {ID: notifID, Type: models.NotificationTypeAll},
		},
	}
	nc := newTestNotificationController(store)

	// Marking twice must succeed both times and leave a single receipt.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPut, "/api/notification/"+notifID.Hex()+"/read", nil)
		c, rec := authedContext(e, req, userID, models.RoleStudent)
		c.SetParamNames("id")
		c.SetParamValues(notifID.Hex())

		require.NoError(t, nc.MarkNotificationRead(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Equal(t, 2, store.markCalls)
	require.Equal(t, []primitive.ObjectID{userID}, store.notifications[notifID].ReadBy)
}

func TestMarkNotificationReadReceiptIsPerUser(t *testing.T) {
	e := echo.New()
	reader := primitive.NewObjectID()
	other := primitive.NewObjectID()
	notifID := primitive.NewObjectID()
	store := &fakeNotificationStore{
		notifications: map[primitive.ObjectID]*models.Notification{
			notifID: {ID: notifID, Type: models.NotificationTypeAll},
		},
	}
	nc := newTestNotificationController(store)

	req := httptest.NewRequest(http.MethodPut, "/api/notification/"+notifID.Hex()+"/read", nil)
	c, rec := authedContext(e, req, reader, models.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues(notifID.Hex())
	require.NoError(t, nc.MarkNotificationRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	n := store.notifications[notifID]
	require.True(t, n.IsReadBy(reader))
	require.False(t, n.IsReadBy(other), "one user's read must not mark it read for another")
}

func TestMarkNotificationReadUnknownID(t *testing.T) {
	e := echo.New()
	store := &fakeNotificationStore{notifications: map[primitive.ObjectID]*models.Notification{}}
	nc := newTestNotificationController(store)

	notifID := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodPut, "/api/notification/"+notifID.Hex()+"/read", nil)
	c, rec := authedContext(e, req, primitive.NewObjectID(), models.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues(notifID.Hex())

	require.NoError(t, nc.MarkNotificationRead(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
