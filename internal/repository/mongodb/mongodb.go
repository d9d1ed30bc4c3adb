// Package mongodb stores each listing kind in its own collection.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"campus-portal-backend/internal/models"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	notificationsCollection = "notifications"
)

// Connect opens a client and verifies the connection
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the queries rely on. Failures are logged, not returned.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	byCreated := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	indexes := map[string][]mongo.IndexModel{
		string(models.KindEvent):     {{Keys: bson.D{{Key: "date", Value: 1}}}},
		string(models.KindHousing):   {byCreated},
		string(models.KindJob):       {byCreated, {Keys: bson.D{{Key: "isActive", Value: 1}}}},
		string(models.KindLostFound): {byCreated, {Keys: bson.D{{Key: "status", Value: 1}, {Key: "type", Value: 1}, {Key: "category", Value: 1}}}},
		notificationsCollection:      {{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}}},
		usersCollection:              {{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}

	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			log.Warn().Err(err).Str("collection", coll).Msg("Failed to create indexes")
		}
	}
}
