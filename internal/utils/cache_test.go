package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedBalance struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(rdb, time.Minute), mr
}

func TestCacheRoundTripAndTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got cachedBalance
	found, err := c.Get(ctx, HistoryKey(1, "page", "1"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, HistoryKey(1, "page", "1"), cachedBalance{Balance: "50", Currency: "USD"}))
	found, err = c.Get(ctx, HistoryKey(1, "page", "1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "50", got.Balance)
	assert.Equal(t, time.Minute, mr.TTL(HistoryKey(1, "page", "1")))

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, HistoryKey(1, "page", "1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateOwnersDropsOnlyTheirKeys(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{
		HistoryKey(1, "1", "20"), HistoryKey(1, "2", "20", "food"), HistoryKey(2, "1", "20"),
		HistoryKey(11, "1", "20"), AdminUsersKey(1, 20), AdminUsersKey(2, 20),
	} {
		require.NoError(t, c.Set(ctx, key, cachedBalance{Balance: "1"}))
	}

	require.NoError(t, c.InvalidateOwners(ctx, 1, 2))

	assert.False(t, mr.Exists(HistoryKey(1, "1", "20")))
	assert.False(t, mr.Exists(HistoryKey(1, "2", "20", "food")))
	assert.False(t, mr.Exists(HistoryKey(2, "1", "20")))
	assert.True(t, mr.Exists(HistoryKey(11, "1", "20")))
	assert.False(t, mr.Exists(AdminUsersKey(1, 20)))
	assert.False(t, mr.Exists(AdminUsersKey(2, 20)))
}

func TestInvalidateUsers(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, AdminUsersKey(1, 20), cachedBalance{Balance: "1"}))
	require.NoError(t, c.Set(ctx, HistoryKey(1, "1", "20"), cachedBalance{Balance: "1"}))

	require.NoError(t, c.InvalidateUsers(ctx))

	assert.False(t, mr.Exists(AdminUsersKey(1, 20)))
	assert.True(t, mr.Exists(HistoryKey(1, "1", "20")))
	assert.NoError(t, (*Cache)(nil).InvalidateUsers(ctx))
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	found, err := c.Get(ctx, "k", &cachedBalance{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Set(ctx, "k", 1))
	assert.NoError(t, c.InvalidateOwners(ctx, 1))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, NewCache(nil, time.Second).Set(ctx, "k", 1))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "txhistory:user:7:page:1:size:20", HistoryKey(7, "page", "1", "size", "20"))
	assert.Equal(t, "admin:users:page=2:size=50", AdminUsersKey(2, 50))
}
