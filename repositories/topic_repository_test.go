package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/models"
)

func TestRegistrationFilterAdmitsUnlimitedTopics(t *testing.T) {
	topicID := primitive.NewObjectID()
	groupID := primitive.NewObjectID()

	filter := registrationFilter(topicID, groupID)

	require.Equal(t, topicID, filter["_id"])
	require.Equal(t, models.TopicStatusApproved, filter["status"])
	require.Equal(t, bson.M{"$ne": groupID}, filter["registeredGroupIds"])

	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)

	// A topic with maxGroups <= 0 has no capacity limit and must match
	// regardless of how many groups are registered.
	require.Equal(t, bson.M{"maxGroups": bson.M{"$lte": 0}}, or[0])

	expr, ok := or[1]["$expr"].(bson.M)
	require.True(t, ok)
	require.Equal(t, bson.A{bson.M{"$size": "$registeredGroupIds"}, "$maxGroups"}, expr["$lt"])
}
