package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/controllers"
	"github.com/hvcntt/thesishub_backend/middleware"
	"github.com/hvcntt/thesishub_backend/models"
)

// RegisterTopicRoutes registers thesis topic routes
func RegisterTopicRoutes(e *echo.Echo, db *mongo.Client, topicController *controllers.TopicController) {
	topicGroup := e.Group("/api/topics")
	topicGroup.Use(middleware.JWTMiddleware())
	topicGroup.Use(middleware.ActivityTracker(db))

	topicGroup.GET("/approved", topicController.GetApprovedTopics)

	// Registration is student-only; leadership is checked in the controller
	topicGroup.POST("/:id/register", topicController.RegisterGroup,
		middleware.RequireRole(models.RoleStudent))
	topicGroup.DELETE("/:id/register", topicController.UnregisterGroup,
		middleware.RequireRole(models.RoleStudent))
}
