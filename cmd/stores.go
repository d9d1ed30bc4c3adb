package cmd

import (
	"context"
	"fmt"
	"time"

	"campus-portal-backend/internal/cache"
	"campus-portal-backend/internal/config"
	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"
	"campus-portal-backend/internal/repository/memory"
	"campus-portal-backend/internal/repository/mongodb"
	"campus-portal-backend/internal/repository/postgres"
	"campus-portal-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// stores groups the repositories selected by database.driver
type stores struct {
	events        repository.Listings[*models.Event]
	housing       repository.Listings[*models.HousingPost]
	jobs          repository.Listings[*models.Job]
	lostFound     repository.Listings[*models.LostFoundItem]
	users         repository.Users
	notifications repository.Notifications
	close         func()
}

func newEvent() *models.Event             { return &models.Event{} }
func newHousing() *models.HousingPost     { return &models.HousingPost{} }
func newJob() *models.Job                 { return &models.Job{} }
func newLostFound() *models.LostFoundItem { return &models.LostFoundItem{} }

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("Database connection established")
		return &stores{
			events:        postgres.NewListingRepository(db, models.KindEvent, newEvent),
			housing:       postgres.NewListingRepository(db, models.KindHousing, newHousing),
			jobs:          postgres.NewListingRepository(db, models.KindJob, newJob),
			lostFound:     postgres.NewListingRepository(db, models.KindLostFound, newLostFound),
			users:         postgres.NewUserRepository(db),
			notifications: postgres.NewNotificationRepository(db),
			close:         db.Close,
		}, nil

	case "mongo":
		client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		mongodb.EnsureIndexes(ctx, db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("MongoDB connection established")
		return &stores{
			events:        mongodb.NewListingRepository(db, models.KindEvent, newEvent),
			housing:       mongodb.NewListingRepository(db, models.KindHousing, newHousing),
			jobs:          mongodb.NewListingRepository(db, models.KindJob, newJob),
			lostFound:     mongodb.NewListingRepository(db, models.KindLostFound, newLostFound),
			users:         mongodb.NewUserRepository(db),
			notifications: mongodb.NewNotificationRepository(db),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
				}
			},
		}, nil

	case "memory":
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		return &stores{
			events:        memory.NewListingStore(newEvent),
			housing:       memory.NewListingStore(newHousing),
			jobs:          memory.NewListingStore(newJob),
			lostFound:     memory.NewListingStore(newLostFound),
			users:         memory.NewUserStore(),
			notifications: memory.NewNotificationStore(),
			close:         func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// withUserCache wraps the user directory in the redis read-through cache when redis.addr is set
func withUserCache(ctx context.Context, cfg config.RedisConfig, users repository.Users) (repository.Users, func(), error) {
	if cfg.Addr == "" {
		return users, func() {}, nil
	}
	ttl, err := time.ParseDuration(cfg.TTL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis.ttl: %w", err)
	}
	client, err := cache.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Addr).Dur("ttl", ttl).Msg("Poster summary cache enabled")
	return cache.NewUserDirectory(users, client, ttl), func() { client.Close() }, nil
}

func openImageStorage(ctx context.Context, cfg config.StorageConfig) (storage.ImageStorage, error) {
	switch cfg.Provider {
	case "minio":
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    !cfg.DisableSSL,
			PublicURL: cfg.PublicURL,
		})
	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Endpoint:  cfg.Endpoint,
			PublicURL: cfg.PublicURL,
		})
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
}
