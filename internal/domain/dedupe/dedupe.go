// Package dedupe tracks idempotency keys so that a registration form
// submitted twice creates a single team.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50_000

// Deduper records idempotency keys and the team each one produced.
type Deduper interface {
	// Claim atomically records key if it is new. When the key was already
	// claimed it returns seen=true and the bound team id, which is empty
	// while the first request is still in flight.
	Claim(ctx context.Context, key string) (teamID string, seen bool)

	// Bind attaches the created team id to a claimed key.
	Bind(ctx context.Context, key, teamID string)

	// Release forgets a claimed key so the request can be retried. Use it
	// when the claiming request failed.
	Release(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key    string
	teamID string
}

// inMemoryDeduper keeps at most maxSize keys and evicts the oldest first.
// maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		keys:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) Claim(_ context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		return el.Value.(*entry).teamID, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.keys[key] = d.order.PushBack(&entry{key: key})
	d.size.Add(1)
	return "", false
}

func (d *inMemoryDeduper) Bind(_ context.Context, key, teamID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		el.Value.(*entry).teamID = teamID
	}
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Front()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.keys, el.Value.(*entry).key)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
