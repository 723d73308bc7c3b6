package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/middleware"
	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/services"
)

// NotificationStore is the slice of the notification repository the
// controller reads and mutates.
type NotificationStore interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID, role string) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) error
	Delete(ctx context.Context, notificationID primitive.ObjectID) error
}

type NotificationController struct {
	notifRepo  NotificationStore
	dispatcher *services.Dispatcher
	aggregator *services.UnreadAggregator
}

func NewNotificationController(notifRepo NotificationStore, dispatcher *services.Dispatcher, aggregator *services.UnreadAggregator) *NotificationController {
	return &NotificationController{
		notifRepo:  notifRepo,
		dispatcher: dispatcher,
		aggregator: aggregator,
	}
}

func (nc *NotificationController) currentUser(c echo.Context) (primitive.ObjectID, string, bool) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	return userID, claims.Role, true
}

// GetNotifications lists the caller's notifications with per-caller read
// state filled in.
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	userID, role, ok := nc.currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifications, err := nc.notifRepo.ListForUser(ctx, userID, role)
	if err != nil {
		log.Printf("Error listing notifications for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved",
		Data:    notifications,
	})
}

// GetUnreadCount returns the caller's unread notification counter.
func (nc *NotificationController) GetUnreadCount(c echo.Context) error {
	userID, role, ok := nc.currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := nc.aggregator.NotificationUnreadCount(ctx, userID, role)
	if err != nil {
		log.Printf("Error counting unread notifications for %s: %v", userID.Hex(), err)
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

// CreateNotification persists and dispatches a broadcast notification.
// Restricted to admins and teachers by route middleware.
func (nc *NotificationController) CreateNotification(c echo.Context) error {
	userID, _, ok := nc.currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title, message and a valid type are required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification, err := nc.dispatcher.DispatchNotification(ctx, req, userID)
	if err != nil {
		log.Printf("Error dispatching notification: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create notification",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Notification created",
		Data:    notification,
	})
}

// MarkNotificationRead records a read receipt for the caller. Marking an
// already-read notification succeeds with unchanged state.
func (nc *NotificationController) MarkNotificationRead(c echo.Context) error {
	userID, _, ok := nc.currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = nc.notifRepo.MarkRead(ctx, notificationID, userID)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}
	if err != nil {
		log.Printf("Error marking notification %s read: %v", notificationID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	nc.aggregator.Invalidate(userID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

// DeleteNotification removes a notification permanently (admin only).
func (nc *NotificationController) DeleteNotification(c echo.Context) error {
	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = nc.notifRepo.Delete(ctx, notificationID)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}
	if err != nil {
		log.Printf("Error deleting notification %s: %v", notificationID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification deleted",
	})
}
