package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error joining
	"strconv"       // Key building
	"strings"       // Key building
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache key prefixes
const (
	historyKeyPrefix = "txhistory:user:"
	adminUsersPrefix = "admin:users:"
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// HistoryKey is the cache key of one filtered history page; parts are appended as-is
func HistoryKey(ownerID uint, parts ...string) string {
	return historyPrefix(ownerID) + ":" + strings.Join(parts, ":")
}

// AdminUsersKey is the cache key of one page of the admin user listing
func AdminUsersKey(page, pageSize int) string {
	return adminUsersPrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}

func historyPrefix(ownerID uint) string {
	return historyKeyPrefix + strconv.FormatUint(uint64(ownerID), 10)
}

// Cache is a read-through JSON cache over Redis. A nil *Cache, or one
// without a client, never hits and never fails.
type Cache struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Entry lifetime
}

// NewCache returns a cache writing entries with ttl
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get loads key into dest and reports whether it was found
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	return GetCache(ctx, c.rdb, key, dest)
}

// Set stores value under key for the cache TTL
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if !c.enabled() {
		return nil
	}
	return SetCache(ctx, c.rdb, key, value, c.ttl)
}

// InvalidateOwners drops every history page of each owner and the admin user
// listing, which shows their balances
func (c *Cache) InvalidateOwners(ctx context.Context, ownerIDs ...uint) error {
	if !c.enabled() {
		return nil
	}
	var errs []error
	for _, id := range ownerIDs {
		// History pages are keyed by filter, so collect them by prefix
		if err := c.deletePrefix(ctx, historyPrefix(id)+":"); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.InvalidateUsers(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// InvalidateUsers drops every cached page of the admin user listing
func (c *Cache) InvalidateUsers(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.deletePrefix(ctx, adminUsersPrefix)
}

// deletePrefix deletes every key starting with prefix
func (c *Cache) deletePrefix(ctx context.Context, prefix string) error {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return DeleteCache(ctx, c.rdb, keys...)
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
