package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/controllers"
	"github.com/hvcntt/thesishub_backend/middleware"
)

// RegisterMessageNotificationRoutes registers chat-thread notification routes
func RegisterMessageNotificationRoutes(e *echo.Echo, db *mongo.Client, messageNotificationController *controllers.MessageNotificationController) {
	threadGroup := e.Group("/api/messageNotification")
	threadGroup.Use(middleware.JWTMiddleware())
	threadGroup.Use(middleware.ActivityTracker(db))

	threadGroup.GET("", messageNotificationController.GetMessageNotifications)
	threadGroup.GET("/unread-count", messageNotificationController.GetUnreadCount)
	threadGroup.PUT("/mark-notifications-read", messageNotificationController.MarkNotificationsRead)
}
