// Package cache provides the small key/value store behind the token
// denylist and the tag cache. Redis is used when configured, otherwise an
// in-process map.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value store with per-key expiry.
type Store interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl. A ttl <= 0 keeps the key until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
