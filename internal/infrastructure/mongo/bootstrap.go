package mongoinfra

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Bootstrap creates the collection indexes. Creating an index that already
// exists with the same definition is a no-op.
func Bootstrap(ctx context.Context, db *mongo.Database, log zerolog.Logger) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	names, err := db.Collection(notificationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fieldUserID, Value: 1}, {Key: fieldIsRead, Value: 1}, {Key: fieldDeletedAt, Value: 1}},
			Options: options.Index().SetName("user_read_deleted"),
		},
		{
			Keys:    bson.D{{Key: fieldUserID, Value: 1}, {Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}},
			Options: options.Index().SetName("user_created_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("create notifications indexes: %w", err)
	}
	log.Info().Strs("indexes", names).Msg("mongo indexes ensured")
	return nil
}
