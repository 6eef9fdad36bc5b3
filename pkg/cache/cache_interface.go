package cache

import (
	"context"
	"time"
)

// Cache abstracts the key-value store used for derived-state snapshots.
type Cache interface {
	// Get unmarshals the value at key into dest. The bool reports whether
	// the key existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
