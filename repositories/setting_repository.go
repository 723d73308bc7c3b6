package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hvcntt/thesishub_backend/config"
	"github.com/hvcntt/thesishub_backend/models"
)

type SettingRepository struct {
	collection *mongo.Collection
}

func NewSettingRepository(db *mongo.Client) *SettingRepository {
	return &SettingRepository{
		collection: config.GetCollection(db, "settings"),
	}
}

// Get returns the setting for a key. A missing document means the feature
// is enabled; admins only insert settings to turn features off.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&setting)
	if err == mongo.ErrNoDocuments {
		return &models.Setting{Key: key, Enabled: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
