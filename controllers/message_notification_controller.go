package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/middleware"
	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/services"
)

// MessageThreadStore is the slice of the thread repository the controller
// reads and clears.
type MessageThreadStore interface {
	ListForUser(ctx context.Context, recipientID primitive.ObjectID) ([]models.MessageNotification, error)
	MarkRead(ctx context.Context, groupID, recipientID primitive.ObjectID) error
}

type MessageNotificationController struct {
	threadRepo MessageThreadStore
	aggregator *services.UnreadAggregator
}

func NewMessageNotificationController(threadRepo MessageThreadStore, aggregator *services.UnreadAggregator) *MessageNotificationController {
	return &MessageNotificationController{
		threadRepo: threadRepo,
		aggregator: aggregator,
	}
}

func (mc *MessageNotificationController) callerID(c echo.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return userID, true
}

// GetMessageNotifications lists the caller's unread chat threads.
func (mc *MessageNotificationController) GetMessageNotifications(c echo.Context) error {
	userID, ok := mc.callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	threads, err := mc.threadRepo.ListForUser(ctx, userID)
	if err != nil {
		log.Printf("Error listing message notifications for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Message notifications retrieved",
		Data:    threads,
	})
}

// GetUnreadCount returns the caller's unread chat message total.
func (mc *MessageNotificationController) GetUnreadCount(c echo.Context) error {
	userID, ok := mc.callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := mc.aggregator.MessageUnreadCount(ctx, userID)
	if err != nil {
		log.Printf("Error counting unread messages for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Unread count retrieved",
		Data:    map[string]int64{"unreadCount": count},
	})
}

// MarkNotificationsRead clears the caller's thread for a group. The whole
// thread is marked at once; clearing an absent thread is still a success.
func (mc *MessageNotificationController) MarkNotificationsRead(c echo.Context) error {
	userID, ok := mc.callerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	groupID, err := primitive.ObjectIDFromHex(c.QueryParam("groupId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or missing groupId",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mc.threadRepo.MarkRead(ctx, groupID, userID); err != nil {
		log.Printf("Error marking thread read for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	mc.aggregator.Invalidate(userID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Message notifications marked as read",
	})
}
