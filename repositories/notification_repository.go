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

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Client) *NotificationRepository {
	return &NotificationRepository{
		collection: config.GetCollection(db, "notifications"),
	}
}

// RecipientFilter builds the read-time recipient predicate for one user:
// role-scoped notifications match on role, assignment-scoped ones on the
// resolved recipient list. List and count queries must share this filter so
// the unread counter always agrees with the list.
func RecipientFilter(userID primitive.ObjectID, role string) bson.M {
	typeClauses := []bson.M{
		{"type": bson.M{"$in": applicableRoleTypes(role)}},
		{"recipients": userID},
	}
	return bson.M{"$or": typeClauses}
}

func applicableRoleTypes(role string) []string {
	switch role {
	case models.RoleStudent:
		return []string{models.NotificationTypeAll, models.NotificationTypeStudent}
	case models.RoleTeacher:
		return []string{models.NotificationTypeAll, models.NotificationTypeTeacher}
	default:
		return []string{}
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if notification.ReadBy == nil {
		notification.ReadBy = []primitive.ObjectID{}
	}

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// ListForUser returns the user's notifications, newest first, with IsRead
// filled in for the caller.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, role string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, RecipientFilter(userID, role), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	for i := range notifications {
		notifications[i].IsRead = notifications[i].IsReadBy(userID)
	}

	return notifications, nil
}

// CountUnreadForUser counts applicable notifications without a read receipt
// from the user.
func (r *NotificationRepository) CountUnreadForUser(ctx context.Context, userID primitive.ObjectID, role string) (int64, error) {
	filter := RecipientFilter(userID, role)
	filter["readBy"] = bson.M{"$ne": userID}
	return r.collection.CountDocuments(ctx, filter)
}

// MarkRead records a read receipt. $addToSet makes the transition one-way
// and idempotent: marking an already-read notification changes nothing.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": notificationID},
		bson.M{"$addToSet": bson.M{"readBy": userID}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, notificationID primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": notificationID}).Decode(&notification)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// Delete removes a notification permanently (admin action).
func (r *NotificationRepository) Delete(ctx context.Context, notificationID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": notificationID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
