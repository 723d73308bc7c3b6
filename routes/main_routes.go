package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/controllers"
	"github.com/hvcntt/thesishub_backend/repositories"
	"github.com/hvcntt/thesishub_backend/services"
	"github.com/hvcntt/thesishub_backend/utils"
	"github.com/hvcntt/thesishub_backend/websocket"
)

// SetupRoutes wires repositories, services and controllers and registers
// every route group on the Echo instance.
func SetupRoutes(e *echo.Echo, db *mongo.Client, redisClient *redis.Client, hub *websocket.Hub) {
	userRepo := repositories.NewUserRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)
	threadRepo := repositories.NewMessageNotificationRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	groupRepo := repositories.NewGroupRepository(db)
	topicRepo := repositories.NewTopicRepository(db)
	settingRepo := repositories.NewSettingRepository(db)

	cache := services.NewUnreadCache(redisClient)
	aggregator := services.NewUnreadAggregator(notifRepo, threadRepo, cache)
	dispatcher := services.NewDispatcher(notifRepo, threadRepo, assignmentRepo,
		groupRepo, topicRepo, userRepo, hub, utils.SMTPMailer{}, utils.FCMPusher{}, cache)

	authController := controllers.NewAuthController(db, userRepo)
	notificationController := controllers.NewNotificationController(notifRepo, dispatcher, aggregator)
	messageNotificationController := controllers.NewMessageNotificationController(threadRepo, aggregator)
	groupController := controllers.NewGroupController(db, groupRepo, dispatcher)
	topicController := controllers.NewTopicController(db, topicRepo, groupRepo, settingRepo, dispatcher)

	RegisterAuthRoutes(e, db, authController)
	RegisterNotificationRoutes(e, db, notificationController)
	RegisterMessageNotificationRoutes(e, db, messageNotificationController)
	RegisterGroupRoutes(e, db, groupController)
	RegisterTopicRoutes(e, db, topicController)

	// Socket endpoint authenticates via ?token= before upgrading
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub, db, aggregator)
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
