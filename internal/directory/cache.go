package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"wordpair/internal/models"
)

const cacheKey = "directory:users"

// CachedDirectory wraps a Directory with an optional Redis read-through
// cache. The participant list changes rarely, so a short TTL is safe;
// daily status reads are deliberately never cached.
type CachedDirectory struct {
	inner Directory
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedDirectory wraps inner with a Redis cache. With a nil client or
// non-positive TTL every read goes straight to inner.
func NewCachedDirectory(inner Directory, redisClient *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{inner: inner, redis: redisClient, ttl: ttl}
}

func (d *CachedDirectory) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if d.readCache(ctx, &users) {
		return users, nil
	}

	users, err := d.inner.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	d.writeCache(ctx, users)
	return users, nil
}

func (d *CachedDirectory) readCache(ctx context.Context, out any) bool {
	if d.redis == nil || d.ttl <= 0 {
		return false
	}
	val, err := d.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (d *CachedDirectory) writeCache(ctx context.Context, val any) {
	if d.redis == nil || d.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = d.redis.Set(ctx, cacheKey, data, d.ttl).Err()
}
