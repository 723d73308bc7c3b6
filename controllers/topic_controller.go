package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/models"
	"github.com/hvcntt/thesishub_backend/repositories"
	"github.com/hvcntt/thesishub_backend/services"
	"github.com/hvcntt/thesishub_backend/utils"
)

type TopicController struct {
	db          *mongo.Client
	topicRepo   *repositories.TopicRepository
	groupRepo   *repositories.GroupRepository
	settingRepo *repositories.SettingRepository
	dispatcher  *services.Dispatcher
}

func NewTopicController(db *mongo.Client, topicRepo *repositories.TopicRepository, groupRepo *repositories.GroupRepository, settingRepo *repositories.SettingRepository, dispatcher *services.Dispatcher) *TopicController {
	return &TopicController{
		db:          db,
		topicRepo:   topicRepo,
		groupRepo:   groupRepo,
		settingRepo: settingRepo,
		dispatcher:  dispatcher,
	}
}

// GetApprovedTopics lists approved topics with their registration counts.
func (tc *TopicController) GetApprovedTopics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topics, err := tc.topicRepo.ListApproved(ctx)
	if err != nil {
		log.Printf("Error listing approved topics: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Approved topics retrieved",
		Data:    topics,
	})
}

// RegisterGroup registers the caller's group on a topic, subject to the
// registration feature switch and the topic's capacity. The new count is
// broadcast to everyone watching the approved topics list.
func (tc *TopicController) RegisterGroup(c echo.Context) error {
	user, err := utils.GetCurrentUser(c, tc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	topicID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid topic ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Admins can switch registration off; the stored reason is returned
	// verbatim for the client to display.
	setting, err := tc.settingRepo.Get(ctx, models.SettingTopicRegistration)
	if err != nil {
		log.Printf("Error reading registration setting: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}
	if !setting.Enabled {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: setting.Reason,
		})
	}

	group, err := tc.callerGroup(ctx, user)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "You must be in a group to register a topic",
		})
	}

	if group.LeaderID != user.ID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the group leader can register a topic",
		})
	}

	topic, err := tc.topicRepo.RegisterGroup(ctx, topicID, group.ID)
	if err == repositories.ErrTopicFull {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Topic has reached its registration capacity",
		})
	}
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Topic not found or not approved",
		})
	}
	if err != nil {
		log.Printf("Error registering group %s on topic %s: %v", group.ID.Hex(), topicID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	tc.dispatcher.NotifyTopicGroupCount(topic)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Group registered",
		Data:    topic,
	})
}

// UnregisterGroup withdraws the caller's group from a topic.
func (tc *TopicController) UnregisterGroup(c echo.Context) error {
	user, err := utils.GetCurrentUser(c, tc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	topicID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid topic ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	group, err := tc.callerGroup(ctx, user)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "You must be in a group to withdraw a registration",
		})
	}

	if group.LeaderID != user.ID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the group leader can withdraw a registration",
		})
	}

	topic, err := tc.topicRepo.UnregisterGroup(ctx, topicID, group.ID)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Topic not found",
		})
	}
	if err != nil {
		log.Printf("Error unregistering group %s from topic %s: %v", group.ID.Hex(), topicID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	tc.dispatcher.NotifyTopicGroupCount(topic)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Registration withdrawn",
		Data:    topic,
	})
}

func (tc *TopicController) callerGroup(ctx context.Context, user *models.User) (*models.StudentGroup, error) {
	if user.GroupID != nil {
		return tc.groupRepo.FindByID(ctx, *user.GroupID)
	}

	groups, err := tc.groupRepo.FindByMember(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &groups[0], nil
}
