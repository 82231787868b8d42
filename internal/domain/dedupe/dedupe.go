// Package dedupe guarantees a page is handled at most once per batch run.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) (bool, error)

	// Unrecord forgets a key so a page rejected by a full queue can be retried.
	Unrecord(ctx context.Context, key string) error

	Size() int64
}

// Key scopes a page title to one run.
func Key(runID, title string) string {
	return runID + "/" + title
}

// inMemoryDeduper keeps keys in a map. When bounded, the oldest key is evicted
// once the capacity is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, only maintained when bounded
	maxSize int      // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true, nil
	}

	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize && len(d.order) > 0 {
			d.evictOldest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false, nil
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return nil
	}
	delete(d.seen, key)
	d.size.Add(-1)

	if d.maxSize > 0 {
		for i, k := range d.order {
			if k == key {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	oldest := d.order[0]
	d.order = d.order[1:]
	if _, ok := d.seen[oldest]; ok {
		delete(d.seen, oldest)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
