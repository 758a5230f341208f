// Package cache holds read-through caches in front of the database. Redis is
// used when configured; otherwise values live in process memory.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-serialisable values by key
type Cache interface {
	// Get loads the value under key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}
