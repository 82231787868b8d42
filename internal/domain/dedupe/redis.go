package dedupe

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisDeduper shares seen keys between bot processes. Keys expire after the
// configured TTL so a later run can process the same page again.
type redisDeduper struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	size   atomic.Int64
}

// NewRedisDeduper creates a deduper backed by the given Redis client.
func NewRedisDeduper(client redis.UniversalClient, opts ...RedisOption) Deduper {
	d := &redisDeduper{
		client: client,
		prefix: "mpbot:seen:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *redisDeduper) SeenAndRecord(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: setnx %q: %w", ErrBackend, key, err)
	}
	if !ok {
		return true, nil
	}
	d.size.Add(1)
	return false, nil
}

func (d *redisDeduper) Unrecord(ctx context.Context, key string) error {
	n, err := d.client.Del(ctx, d.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("%w: del %q: %w", ErrBackend, key, err)
	}
	if n > 0 {
		d.size.Add(-1)
	}
	return nil
}

// Size counts keys recorded by this process only.
func (d *redisDeduper) Size() int64 {
	return d.size.Load()
}
