package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/pkg/metrics"
)

// MemoryStore is a bounded Store. When full, the oldest insertion is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	byID     map[string]*list.Element
	order    *list.List // front = oldest
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity: defaultCapacity,
		byID:     make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateStoreEntries(0)
	return s
}

// Put inserts or replaces c.
func (s *MemoryStore) Put(_ context.Context, c calculation.Calculation) error {
	if c.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byID[c.ID]; ok {
		el.Value = c
		return nil
	}
	for s.order.Len() >= s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.byID, oldest.Value.(calculation.Calculation).ID)
		metrics.RecordStoreEviction()
	}
	s.byID[c.ID] = s.order.PushBack(c)
	metrics.UpdateStoreEntries(s.order.Len())
	return nil
}

// Get returns the calculation with id.
func (s *MemoryStore) Get(_ context.Context, id string) (calculation.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.byID[id]
	if !ok {
		return calculation.Calculation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return el.Value.(calculation.Calculation), nil
}

// Update applies fn to a copy of the stored calculation and stores it when fn succeeds.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*calculation.Calculation) error) (calculation.Calculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byID[id]
	if !ok {
		return calculation.Calculation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c := el.Value.(calculation.Calculation)
	if err := fn(&c); err != nil {
		return calculation.Calculation{}, err
	}
	el.Value = c
	return c, nil
}

// Delete removes the calculation with id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byID[id]; ok {
		s.order.Remove(el)
		delete(s.byID, id)
		metrics.UpdateStoreEntries(s.order.Len())
	}
	return nil
}

// Count returns the number of stored calculations.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
