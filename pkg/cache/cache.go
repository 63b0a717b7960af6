package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service is a raw-bytes cache keyed by artifact path. Artifact blobs must
// survive caching byte-for-byte, so values are opaque []byte, never
// re-encoded.
type Service interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// Key builds a namespaced cache key from parts.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
