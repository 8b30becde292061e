// Package cache provides the read-through response cache placed in front of
// the expensive GET endpoints, and the key/value stores backing it.
package cache

import (
	"context"
	"time"
)

// Store is the key/value backend of the response cache.
// A missing key is reported as found == false with a nil error; err is
// reserved for backend failures, which the cache treats as a miss.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
