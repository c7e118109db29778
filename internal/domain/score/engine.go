package score

import (
	"context"
	"fmt"
)

// Scorer computes a Result from raw inputs, honoring ctx for cancellation.
type Scorer interface {
	Score(ctx context.Context, in Inputs) (Result, error)
}

// Engine adapts Compute to the Scorer contract used by the worker pool.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score returns Compute(in). The only error is an already cancelled ctx.
func (e *Engine) Score(ctx context.Context, in Inputs) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	return Compute(in), nil
}
