package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hvcntt/thesishub_backend/models"
)

func recipientTypeClause(t *testing.T, filter bson.M) []string {
	t.Helper()
	or, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)

	in, ok := or[0]["type"].(bson.M)
	require.True(t, ok)
	types, ok := in["$in"].([]string)
	require.True(t, ok)
	return types
}

func TestRecipientFilterForTeacher(t *testing.T) {
	userID := primitive.NewObjectID()
	filter := RecipientFilter(userID, models.RoleTeacher)

	types := recipientTypeClause(t, filter)
	require.ElementsMatch(t, []string{models.NotificationTypeAll, models.NotificationTypeTeacher}, types)
	require.NotContains(t, types, models.NotificationTypeStudent)

	or := filter["$or"].([]bson.M)
	require.Equal(t, userID, or[1]["recipients"])
}

func TestRecipientFilterForStudent(t *testing.T) {
	filter := RecipientFilter(primitive.NewObjectID(), models.RoleStudent)

	types := recipientTypeClause(t, filter)
	require.ElementsMatch(t, []string{models.NotificationTypeAll, models.NotificationTypeStudent}, types)
}

func TestRecipientFilterForUnknownRoleMatchesNoRoleTypes(t *testing.T) {
	filter := RecipientFilter(primitive.NewObjectID(), "auditor")

	types := recipientTypeClause(t, filter)
	require.Empty(t, types, "unknown roles only see explicitly targeted notifications")
}
