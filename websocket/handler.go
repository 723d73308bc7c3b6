package websocket

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/middleware"
	"github.com/hvcntt/thesishub_backend/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UnreadCounter supplies the counters pushed in the unreadSync event.
type UnreadCounter interface {
	UnreadCounts(ctx context.Context, userID primitive.ObjectID, role string) (notifications int64, messages int64, err error)
}

// HandleWebSocket authenticates and upgrades a websocket connection.
// Tokens are mandatory: an unauthenticated socket is rejected before the
// upgrade instead of being parked in a half-connected state.
func HandleWebSocket(c echo.Context, hub *Hub, db *mongo.Client, counter UnreadCounter) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	claims, err := middleware.ParseToken(token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or missing token",
		})
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ConnID: uuid.NewString(),
		UserID: userID,
		Role:   claims.Role,
		Conn:   conn,
	}

	hub.Register(client)

	// Everyone listens on their role room; group rooms are joined on request.
	hub.JoinRoom(client, RoleRoom(claims.Role))

	client.Send(Event{
		Event: EventConnected,
		Data:  ConnectedPayload{ConnID: client.ConnID, UserID: userID.Hex()},
	})

	// Resync before incremental pushes so a reconnecting client does not
	// keep counters from before the disconnect.
	if counter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		notifCount, msgCount, err := counter.UnreadCounts(ctx, userID, claims.Role)
		cancel()
		if err != nil {
			log.Printf("Error computing unread sync for %s: %v", userID.Hex(), err)
		} else {
			client.Send(Event{
				Event: EventUnreadSync,
				Data:  UnreadSyncPayload{NotificationCount: notifCount, MessageCount: msgCount},
			})
		}
	}

	go readLoop(client, hub, db)

	return nil
}

func readLoop(client *Client, hub *Hub, db *mongo.Client) {
	defer hub.Unregister(client)

	conn := client.Conn.(*websocket.Conn)
	for {
		var action ClientAction
		if err := conn.ReadJSON(&action); err != nil {
			break
		}

		switch action.Action {
		case ActionJoinGroups:
			joinGroupRooms(client, hub, db)
		case ActionJoinApprovedTopicsList:
			hub.JoinRoom(client, ApprovedTopicsRoom)
		default:
			// Unknown actions are ignored, not fatal
		}
	}
}

// joinGroupRooms re-derives the user's group memberships and subscribes the
// connection to one room per group.
func joinGroupRooms(client *Client, hub *Hub, db *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(db, "studentGroups").Find(ctx, bson.M{
		"memberIds": client.UserID,
	})
	if err != nil {
		log.Printf("Error finding groups for %s: %v", client.UserID.Hex(), err)
		return
	}
	defer cursor.Close(ctx)

	var groups []models.StudentGroup
	if err := cursor.All(ctx, &groups); err != nil {
		log.Printf("Error decoding groups for %s: %v", client.UserID.Hex(), err)
		return
	}

	for _, group := range groups {
		hub.JoinRoom(client, GroupRoom(group.ID))
	}
}
