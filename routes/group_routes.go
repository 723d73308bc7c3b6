package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/controllers"
	"github.com/hvcntt/thesishub_backend/middleware"
)

// RegisterGroupRoutes registers student group routes
func RegisterGroupRoutes(e *echo.Echo, db *mongo.Client, groupController *controllers.GroupController) {
	groupRoutes := e.Group("/api/groups")
	groupRoutes.Use(middleware.JWTMiddleware())
	groupRoutes.Use(middleware.ActivityTracker(db))

	groupRoutes.GET("/mine", groupController.GetMyGroups)
	groupRoutes.POST("/:id/messages", groupController.SendMessage)
}
