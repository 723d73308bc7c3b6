package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/controllers"
	"github.com/hvcntt/thesishub_backend/middleware"
	"github.com/hvcntt/thesishub_backend/models"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, notificationController *controllers.NotificationController) {
	notificationGroup := e.Group("/api/notification")
	notificationGroup.Use(middleware.JWTMiddleware())
	notificationGroup.Use(middleware.ActivityTracker(db))

	notificationGroup.GET("", notificationController.GetNotifications)
	notificationGroup.GET("/unread-count", notificationController.GetUnreadCount)
	notificationGroup.PUT("/:id/read", notificationController.MarkNotificationRead)

	// Only staff can publish; only admins can remove
	notificationGroup.POST("", notificationController.CreateNotification,
		middleware.RequireRole(models.RoleAdmin, models.RoleTeacher))
	notificationGroup.DELETE("/:id", notificationController.DeleteNotification,
		middleware.RequireRole(models.RoleAdmin))
}
