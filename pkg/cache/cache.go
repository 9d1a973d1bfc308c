// Package cache provides a Redis-backed cache for catalog reads.
//
// The storefront renders the same featured/new/discounted sections for every
// visitor, so those queries are cached with a short TTL and invalidated when
// an admin writes to the product catalog. When REDIS_ADDR is unset or Redis
// is unreachable, every operation is a safe no-op and reads fall through to
// the store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ganzorig/mishil/config"
	"github.com/ganzorig/mishil/pkg/metrics"
)

var RDB *redis.Client
var Ctx = context.Background()

// Connect initialises the Redis client and verifies the connection with a
// ping. A missing REDIS_ADDR disables caching without error.
func Connect() error {
	addr := config.RedisAddr()
	if addr == "" {
		return nil
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := RDB.Ping(Ctx).Err(); err != nil {
		RDB = nil // mark as unavailable so Get/Set/Del no-op safely
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(Ctx, key).Result()
	if err != nil {
		metrics.CacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.CacheMisses.Inc()
		return false
	}

	metrics.CacheHits.Inc()
	return true
}

// Set stores value in Redis under key for the given TTL.
func Set(key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return RDB.Set(Ctx, key, data, ttl).Err()
}

// Del removes one or more keys.
func Del(keys ...string) error {
	if RDB == nil || len(keys) == 0 {
		return nil
	}
	return RDB.Del(Ctx, keys...).Err()
}

// DelPrefix removes every key matching prefix*. Used to invalidate all
// catalog sections after an admin product write.
func DelPrefix(prefix string) error {
	if RDB == nil {
		return nil
	}

	iter := RDB.Scan(Ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(Ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return Del(keys...)
}

// Close releases the Redis connection on shutdown.
func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}
