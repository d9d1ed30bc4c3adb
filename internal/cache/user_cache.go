// Package cache keeps poster summaries in Redis in front of the user directory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-portal-backend/internal/models"
	"campus-portal-backend/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const summaryKeyPrefix = "user:summary:"

// NewRedisClient connects and pings the server
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// UserDirectory is a read-through cache over repository.Users. Only summaries are cached;
// recipient lists and full user reads go straight to the inner directory.
type UserDirectory struct {
	repository.Users
	client *redis.Client
	ttl    time.Duration
}

func NewUserDirectory(inner repository.Users, client *redis.Client, ttl time.Duration) *UserDirectory {
	return &UserDirectory{Users: inner, client: client, ttl: ttl}
}

func summaryKey(id string) string {
	return summaryKeyPrefix + id
}

// GetSummaries serves hits from Redis and loads misses from the inner directory.
// Redis failures degrade to a direct read.
func (d *UserDirectory) GetSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = summaryKey(id)
	}

	values, err := d.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Warn().Err(err).Msg("Redis MGET failed, reading users directly")
		return d.Users.GetSummaries(ctx, ids)
	}

	var misses []string
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var summary models.UserSummary
		if err := json.Unmarshal([]byte(s), &summary); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		out[ids[i]] = summary
	}
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := d.Users.GetSummaries(ctx, misses)
	if err != nil {
		return nil, err
	}

	pipe := d.client.Pipeline()
	for id, summary := range loaded {
		out[id] = summary
		raw, err := json.Marshal(summary)
		if err != nil {
			continue
		}
		pipe.Set(ctx, summaryKey(id), raw, d.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Int("count", len(loaded)).Msg("Failed to cache user summaries")
	}
	return out, nil
}
