// Package catalogcache holds the versioned, short-lived snapshot of the
// signed plan catalog.
package catalogcache

import (
	"context"
	"time"
)

// Store is the key-value boundary behind the cache. Implementations must
// honor the TTL; values past it are misses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
