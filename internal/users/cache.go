package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// listCacheKey is the Redis key holding the JSON-encoded user listing.
const listCacheKey = "users:list"

// listCacheTTL bounds staleness if an invalidation is ever missed.
const listCacheTTL = 5 * time.Minute

// cachingRepository decorates a Repository with a Redis cache for the full
// user listing, which backs the index page on every authenticated request.
// Every write invalidates the cached listing. Cache failures degrade to the
// database; they are logged, never surfaced.
type cachingRepository struct {
	inner Repository
	redis *redis.Client
}

// NewCachingRepository wraps repo with a Redis-backed listing cache.
func NewCachingRepository(repo Repository, rdb *redis.Client) Repository {
	return &cachingRepository{inner: repo, redis: rdb}
}

// List serves the listing from Redis when possible, falling back to the
// database and repopulating the cache on a miss.
func (c *cachingRepository) List(ctx context.Context) ([]User, error) {
	data, err := c.redis.Get(ctx, listCacheKey).Bytes()
	if err == nil {
		var users []User
		if jsonErr := json.Unmarshal(data, &users); jsonErr == nil {
			return users, nil
		}
		// Corrupt cache entry; drop it and fall through to the database.
		c.invalidate(ctx)
	} else if err != redis.Nil {
		slog.Warn("user list cache read failed", slog.Any("error", err))
	}

	users, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(users); jsonErr == nil {
		if setErr := c.redis.Set(ctx, listCacheKey, data, listCacheTTL).Err(); setErr != nil {
			slog.Warn("user list cache write failed", slog.Any("error", setErr))
		}
	}

	return users, nil
}

// Create delegates and invalidates the cached listing.
func (c *cachingRepository) Create(ctx context.Context, user *User) error {
	if err := c.inner.Create(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update delegates and invalidates the cached listing.
func (c *cachingRepository) Update(ctx context.Context, user *User) error {
	if err := c.inner.Update(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete delegates and invalidates the cached listing.
func (c *cachingRepository) Delete(ctx context.Context, id int64) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID is a point read; it bypasses the listing cache.
func (c *cachingRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return c.inner.FindByID(ctx, id)
}

// FindByUsername is a point read; it bypasses the listing cache.
func (c *cachingRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return c.inner.FindByUsername(ctx, username)
}

func (c *cachingRepository) invalidate(ctx context.Context) {
	if err := c.redis.Del(ctx, listCacheKey).Err(); err != nil {
		slog.Warn("user list cache invalidation failed", slog.Any("error", err))
	}
}
