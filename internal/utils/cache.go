package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"
	"time" // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

const revokedPrefix = "session:revoked:" // Key prefix of the logout denylist

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client behaves like an empty cache.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err // Stored value is not valid JSON
	}
	return true, nil
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DeleteCachePattern deletes every key matching a glob pattern in batches
func DeleteCachePattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	if rdb == nil {
		return nil
	}
	var keys []string
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator() // Iterate with SCAN
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	for len(keys) > 0 {
		n := min(len(keys), 100)
		if err := rdb.Del(ctx, keys[:n]...).Err(); err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}

// RevokeToken puts a token id on the denylist until the token would have expired anyway
func RevokeToken(ctx context.Context, rdb *redis.Client, tokenID string, expiresAt time.Time) error {
	if rdb == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // Already expired
	}
	return rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

// IsTokenRevoked reports whether a token id was denylisted by a logout
func IsTokenRevoked(ctx context.Context, rdb *redis.Client, tokenID string) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
