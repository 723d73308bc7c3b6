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

type GroupController struct {
	db         *mongo.Client
	groupRepo  *repositories.GroupRepository
	dispatcher *services.Dispatcher
}

func NewGroupController(db *mongo.Client, groupRepo *repositories.GroupRepository, dispatcher *services.Dispatcher) *GroupController {
	return &GroupController{
		db:         db,
		groupRepo:  groupRepo,
		dispatcher: dispatcher,
	}
}

// GetMyGroups lists the groups the caller belongs to.
func (gc *GroupController) GetMyGroups(c echo.Context) error {
	user, err := utils.GetCurrentUser(c, gc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	groups, err := gc.groupRepo.FindByMember(ctx, user.ID)
	if err != nil {
		log.Printf("Error listing groups for %s: %v", user.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Groups retrieved",
		Data:    groups,
	})
}

// SendMessage posts a chat message to the caller's group. The message is
// coalesced into each other member's unread thread and pushed to the
// group's room, excluding the sender.
func (gc *GroupController) SendMessage(c echo.Context) error {
	user, err := utils.GetCurrentUser(c, gc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	groupID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid group ID",
		})
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Message content is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	group, err := gc.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Group not found",
			})
		}
		log.Printf("Error finding group %s: %v", groupID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if !group.HasMember(user.ID) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You are not a member of this group",
		})
	}

	if err := gc.dispatcher.DispatchGroupMessage(ctx, group, *user, req.Content); err != nil {
		log.Printf("Error dispatching group message: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send message",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Message sent",
	})
}
