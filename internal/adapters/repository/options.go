package repository

// defaultCapacity bounds the store when no capacity is configured.
const defaultCapacity = 50_000

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets the maximum number of stored calculations.
// Zero or negative keeps the default.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}
