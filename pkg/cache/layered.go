package cache

import (
	"context"
	"time"
)

// Layered is a two-level cache: L1 in-process memory, L2 Redis. Reads fall
// through to Redis and repopulate memory; writes go through to both.
type Layered struct {
	mem *Memory
	rds *Redis
}

// NewLayered creates a layered cache in front of an existing Redis cache.
func NewLayered(rds *Redis, opts ...MemoryOption) *Layered {
	return &Layered{
		mem: NewMemory(opts...),
		rds: rds,
	}
}

func (l *Layered) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := l.mem.Get(ctx, key); err == nil {
		return b, nil
	}

	b, err := l.rds.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	_ = l.mem.Set(ctx, key, b, 0)
	return b, nil
}

func (l *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := l.rds.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = l.mem.Set(ctx, key, value, ttl)
	return nil
}

func (l *Layered) Delete(ctx context.Context, keys ...string) error {
	_ = l.mem.Delete(ctx, keys...)
	return l.rds.Delete(ctx, keys...)
}

func (l *Layered) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = l.mem.DeleteByPattern(ctx, pattern)
	return l.rds.DeleteByPattern(ctx, pattern)
}

func (l *Layered) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := l.mem.Exists(ctx, keys...); ok {
		return true, nil
	}
	return l.rds.Exists(ctx, keys...)
}

func (l *Layered) Close() error {
	_ = l.mem.Close()
	return l.rds.Close()
}
