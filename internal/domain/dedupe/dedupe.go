// Package dedupe remembers client idempotency keys so a retried entry is
// stored only once.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper tracks idempotency keys and the event ids they produced.
type Deduper interface {
	// Claim reserves key. When key was claimed before it returns the bound
	// event id (possibly "" while the first write is in flight) and true.
	Claim(ctx context.Context, key string) (string, bool)
	// Bind records the event id produced for a claimed key.
	Bind(ctx context.Context, key, id string)
	// Release forgets key so a failed write can be retried.
	Release(ctx context.Context, key string)
	Size() int
}

type entry struct {
	key string
	id  string
}

type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List // front is oldest
	maxSize int
}

// NewInMemoryDeduper creates a deduper held in process memory.
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
		return el.Value.(*entry).id, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.keys, oldest.Value.(*entry).key)
	}
	d.keys[key] = d.order.PushBack(&entry{key: key})
	return "", false
}

func (d *inMemoryDeduper) Bind(_ context.Context, key, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		el.Value.(*entry).id = id
	}
}

func (d *inMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
