package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/models"
)

// ErrTopicFull is returned when a registration would exceed maxGroups.
var ErrTopicFull = errors.New("topic has reached its registration capacity")

type TopicRepository struct {
	collection *mongo.Collection
}

func NewTopicRepository(db *mongo.Client) *TopicRepository {
	return &TopicRepository{
		collection: config.GetCollection(db, "topics"),
	}
}

func (r *TopicRepository) FindByID(ctx context.Context, topicID primitive.ObjectID) (*models.Topic, error) {
	var topic models.Topic
	err := r.collection.FindOne(ctx, bson.M{"_id": topicID}).Decode(&topic)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) ListApproved(ctx context.Context) ([]models.Topic, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.TopicStatusApproved}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var topics []models.Topic
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// registrationFilter matches an approved topic that does not already hold
// the group and still has room. Non-positive maxGroups means unlimited, so
// the size comparison only applies when a positive limit is set.
func registrationFilter(topicID, groupID primitive.ObjectID) bson.M {
	return bson.M{
		"_id":                topicID,
		"status":             models.TopicStatusApproved,
		"registeredGroupIds": bson.M{"$ne": groupID},
		"$or": []bson.M{
			{"maxGroups": bson.M{"$lte": 0}},
			{"$expr": bson.M{
				"$lt": bson.A{bson.M{"$size": "$registeredGroupIds"}, "$maxGroups"},
			}},
		},
	}
}

// RegisterGroup adds a group to a topic if capacity allows. The capacity
// check and the insert happen in one filtered update, so two concurrent
// registrations cannot both take the last slot.
func (r *TopicRepository) RegisterGroup(ctx context.Context, topicID, groupID primitive.ObjectID) (*models.Topic, error) {
	filter := registrationFilter(topicID, groupID)
	update := bson.M{
		"$addToSet": bson.M{"registeredGroupIds": groupID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var topic models.Topic
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&topic)
	if err == mongo.ErrNoDocuments {
		// Distinguish an existing registration from a full or missing topic.
		// Success is only reported when the group actually holds a slot.
		existing, findErr := r.FindByID(ctx, topicID)
		if findErr != nil {
			return nil, findErr
		}
		if existing.Status != models.TopicStatusApproved {
			return nil, mongo.ErrNoDocuments
		}
		if existing.IsRegistered(groupID) {
			return existing, nil
		}
		if existing.IsFull() {
			return nil, ErrTopicFull
		}
		return nil, mongo.ErrNoDocuments
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// UnregisterGroup removes a group's registration from a topic.
func (r *TopicRepository) UnregisterGroup(ctx context.Context, topicID, groupID primitive.ObjectID) (*models.Topic, error) {
	filter := bson.M{"_id": topicID}
	update := bson.M{
		"$pull": bson.M{"registeredGroupIds": groupID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var topic models.Topic
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&topic)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}
