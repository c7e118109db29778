// Package repository holds submitted calculations in process memory.
package repository

import (
	"context"

	"github.com/lnkd/lnkd/internal/domain/calculation"
)

// Store provides read/write access to calculations.
type Store interface {
	// Put inserts or replaces a calculation.
	Put(ctx context.Context, c calculation.Calculation) error

	// Get returns a copy of the calculation with id.
	// Returns ErrNotFound if the id is unknown or was evicted.
	Get(ctx context.Context, id string) (calculation.Calculation, error)

	// Update applies fn to the stored calculation under the store lock.
	// The change is kept only if fn returns nil.
	Update(ctx context.Context, id string, fn func(*calculation.Calculation) error) (calculation.Calculation, error)

	// Delete removes the calculation with id. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored calculations.
	Count(ctx context.Context) int
}
