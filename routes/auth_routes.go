package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/controllers"
	"github.com/hvcntt/thesishub_backend/middleware"
)

// RegisterAuthRoutes registers login and device-token routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, authController *controllers.AuthController) {
	e.POST("/api/auth/login", authController.Login)

	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware())
	authGroup.Use(middleware.ActivityTracker(db))
	authGroup.POST("/users/fcm-token", authController.UpdateFCMToken)
}
