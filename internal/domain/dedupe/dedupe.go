// Package dedupe maps client idempotency keys to the calculation they created.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper remembers which calculation a client key produced.
type Deduper interface {
	// Claim atomically binds key to id unless key is already bound.
	// It returns the bound id and whether this call created the binding.
	Claim(ctx context.Context, key, id string) (string, bool)

	// Release forgets key, e.g. when the submission it guarded failed.
	Release(ctx context.Context, key string)

	// Size returns the number of remembered keys.
	Size() int
}

// InMemoryDeduper is a Deduper that forgets the oldest key first once full.
type InMemoryDeduper struct {
	mu      sync.Mutex
	ids     map[string]string
	order   []string // ring of keys in claim order; "" marks a released slot
	next    int
	maxSize int
}

var _ Deduper = (*InMemoryDeduper)(nil)

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper(opts ...Option) *InMemoryDeduper {
	d := &InMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.ids = make(map[string]string)
	if d.maxSize > 0 {
		d.order = make([]string, d.maxSize)
	}
	return d
}

// Claim implements Deduper.
func (d *InMemoryDeduper) Claim(_ context.Context, key, id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.ids[key]; ok {
		return existing, false
	}
	if d.maxSize > 0 {
		if old := d.order[d.next]; old != "" {
			delete(d.ids, old)
		}
		d.order[d.next] = key
		d.next = (d.next + 1) % d.maxSize
	}
	d.ids[key] = id
	return id, true
}

// Release implements Deduper.
func (d *InMemoryDeduper) Release(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ids[key]; !ok {
		return
	}
	delete(d.ids, key)
	for i, k := range d.order {
		if k == key {
			d.order[i] = ""
			break
		}
	}
}

// Size implements Deduper.
func (d *InMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}
