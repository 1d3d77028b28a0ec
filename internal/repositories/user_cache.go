package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/models"
)

// UserCacheRepository caches user profiles in Redis.
type UserCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration for cached profiles
}

// NewUserCacheRepository creates a cache with the given TTL.
func NewUserCacheRepository(client *redis.Client, expiration time.Duration) *UserCacheRepository {
	return &UserCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get returns the cached user, or nil on a cache miss.
func (r *UserCacheRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	key := userKey(id)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Log.Debugw("cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		logger.Log.Infow("cache get failed", "key", key, "error", err)
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(val, &user); err != nil {
		logger.Log.Infow("cache decode failed", "key", key, "error", err)
		return nil, err
	}

	logger.Log.Debugw("cache hit", "key", key)
	return &user, nil
}

// Set stores the user profile with the configured TTL.
func (r *UserCacheRepository) Set(ctx context.Context, user *models.User) error {
	key := userKey(user.ID)

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()
	logger.Log.Debugw("cache set", "key", key, "error", err)
	return err
}

// Delete evicts the cached profile.
func (r *UserCacheRepository) Delete(ctx context.Context, id int64) error {
	key := userKey(id)

	err := r.client.Del(ctx, key).Err()
	logger.Log.Debugw("cache delete", "key", key, "error", err)
	return err
}
