package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/models"
)

type MessageNotificationRepository struct {
	collection *mongo.Collection
}

func NewMessageNotificationRepository(db *mongo.Client) *MessageNotificationRepository {
	return &MessageNotificationRepository{
		collection: config.GetCollection(db, "messageNotifications"),
	}
}

// Append coalesces a chat message into the recipient's unread thread for the
// group. One atomic upsert per recipient: $push appends the message, $inc
// bumps the counter, so two near-simultaneous messages cannot lose an
// increment. Returns the thread after the update, for the push payload.
func (r *MessageNotificationRepository) Append(ctx context.Context, groupID primitive.ObjectID, groupName string, recipientID primitive.ObjectID, sender models.MessageSender, message models.ChatMessage) (*models.MessageNotification, error) {
	filter := bson.M{
		"groupId":     groupID,
		"recipientId": recipientID,
	}
	update := bson.M{
		"$push": bson.M{"messages": message},
		"$inc":  bson.M{"messagesCount": 1},
		"$set": bson.M{
			"groupName":         groupName,
			"sender":            sender,
			"latestMessageTime": message.Timestamp,
		},
		"$setOnInsert": bson.M{
			"createdAt": time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var thread models.MessageNotification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListForUser returns the user's unread threads, latest activity first.
func (r *MessageNotificationRepository) ListForUser(ctx context.Context, recipientID primitive.ObjectID) ([]models.MessageNotification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "latestMessageTime", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipientId": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var threads []models.MessageNotification
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// CountUnreadForUser sums messagesCount over the user's threads.
func (r *MessageNotificationRepository) CountUnreadForUser(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipientId": recipientID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$messagesCount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// MarkRead clears the recipient's thread for a group. Reading marks every
// accumulated message at once; clearing a thread that does not exist is a
// no-op, so repeated calls are harmless.
func (r *MessageNotificationRepository) MarkRead(ctx context.Context, groupID, recipientID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{
		"groupId":     groupID,
		"recipientId": recipientID,
	})
	return err
}
