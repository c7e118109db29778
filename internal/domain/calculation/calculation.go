// Package calculation models one score submission and its display phases.
package calculation

import (
	"errors"
	"fmt"
	"time"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// ErrInvalidTransition is returned when a phase change is not allowed.
var ErrInvalidTransition = errors.New("invalid phase transition")

// Phase is the presentation state of a calculation.
type Phase string

// Phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseComputing Phase = "computing"
	PhaseDone      Phase = "done"
)

// CanTransition reports whether p may move to next.
// Done may go back to computing when the same form is recalculated.
func (p Phase) CanTransition(next Phase) bool {
	switch p {
	case PhaseIdle:
		return next == PhaseComputing
	case PhaseComputing:
		return next == PhaseDone
	case PhaseDone:
		return next == PhaseComputing
	default:
		return false
	}
}

// Calculation is a submitted set of inputs and, once done, its result.
type Calculation struct {
	ID          string        `json:"id"`
	Phase       Phase         `json:"phase"`
	Inputs      score.Inputs  `json:"inputs"`
	Result      *score.Result `json:"result,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// New returns an idle calculation.
func New(id string, in score.Inputs, now time.Time) Calculation {
	return Calculation{
		ID:        id,
		Phase:     PhaseIdle,
		Inputs:    in,
		CreatedAt: now,
	}
}

// Start moves the calculation into the computing phase and drops any
// previous result.
func (c *Calculation) Start(now time.Time) error {
	if err := c.transition(PhaseComputing); err != nil {
		return err
	}
	c.Result = nil
	c.StartedAt = now
	c.CompletedAt = time.Time{}
	return nil
}

// Complete stores the result and marks the calculation done.
func (c *Calculation) Complete(res score.Result, now time.Time) error {
	if err := c.transition(PhaseDone); err != nil {
		return err
	}
	c.Result = &res
	c.CompletedAt = now
	return nil
}

// Elapsed returns the time spent computing, or zero if not done.
func (c *Calculation) Elapsed() time.Duration {
	if c.Phase != PhaseDone {
		return 0
	}
	return c.CompletedAt.Sub(c.StartedAt)
}

func (c *Calculation) transition(next Phase) error {
	if !c.Phase.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Phase, next)
	}
	c.Phase = next
	return nil
}
