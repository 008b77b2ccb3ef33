package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordpair/internal/models"
)

type countingDirectory struct {
	users []models.User
	err   error
	calls int
}

func (d *countingDirectory) ListUsers(ctx context.Context) ([]models.User, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.users, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCachedDirectoryServesSecondReadFromCache(t *testing.T) {
	inner := &countingDirectory{users: []models.User{{ID: "u1", FCMToken: "tok1"}}}
	dir := NewCachedDirectory(inner, newTestRedis(t), time.Minute)

	users, err := dir.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, inner.calls)

	users, err = dir.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, 1, inner.calls, "second read must hit the cache")
}

func TestCachedDirectoryWithoutRedisPassesThrough(t *testing.T) {
	inner := &countingDirectory{users: []models.User{{ID: "u1"}}}
	dir := NewCachedDirectory(inner, nil, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := dir.ListUsers(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestCachedDirectoryPropagatesInnerError(t *testing.T) {
	inner := &countingDirectory{err: errors.New("db down")}
	dir := NewCachedDirectory(inner, newTestRedis(t), time.Minute)

	_, err := dir.ListUsers(context.Background())
	assert.Error(t, err)
}
