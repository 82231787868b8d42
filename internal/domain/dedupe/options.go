package dedupe

import "time"

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of keys to keep in memory.
// If maxSize <= 0 the deduper is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// RedisOption configures the Redis deduper.
type RedisOption func(*redisDeduper)

// WithTTL sets how long a recorded key survives.
func WithTTL(ttl time.Duration) RedisOption {
	return func(d *redisDeduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the namespace for recorded keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(d *redisDeduper) {
		d.prefix = prefix
	}
}
