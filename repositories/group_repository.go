package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/models"
)

type GroupRepository struct {
	collection *mongo.Collection
}

func NewGroupRepository(db *mongo.Client) *GroupRepository {
	return &GroupRepository{
		collection: config.GetCollection(db, "studentGroups"),
	}
}

func (r *GroupRepository) FindByID(ctx context.Context, groupID primitive.ObjectID) (*models.StudentGroup, error) {
	var group models.StudentGroup
	err := r.collection.FindOne(ctx, bson.M{"_id": groupID}).Decode(&group)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.StudentGroup, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"memberIds": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []models.StudentGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// MembersOfGroups collects the distinct member ids of a set of groups.
func (r *GroupRepository) MembersOfGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": groupIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []models.StudentGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]bool)
	var members []primitive.ObjectID
	for _, group := range groups {
		for _, id := range group.MemberIDs {
			if !seen[id] {
				seen[id] = true
				members = append(members, id)
			}
		}
	}
	return members, nil
}
