package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/models"
)

type AssignmentRepository struct {
	collection *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Client) *AssignmentRepository {
	return &AssignmentRepository{
		collection: config.GetCollection(db, "assignments"),
	}
}

// MembersForTopic returns the distinct member ids of all assignments of the
// given type on a topic. Scoped notifications resolve recipients through
// this lookup.
func (r *AssignmentRepository) MembersForTopic(ctx context.Context, assignmentType string, topicID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"type":    assignmentType,
		"topicId": topicID,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.Assignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool)
	var members []primitive.ObjectID
	for _, assignment := range assignments {
		for _, id := range assignment.MemberIDs {
			if !seen[id] {
				seen[id] = true
				members = append(members, id)
			}
		}
	}
	return members, nil
}
