package store

import (
	"context"
	"time"
)

// KV is a TTL-capable key/value store used as the response cache
// backend. Implementations must treat a missing key as (_, false, nil).
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// ScanPrefix returns every key starting with the given prefix.
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
}
