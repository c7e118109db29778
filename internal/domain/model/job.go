// Package model contains payloads passed between layers.
package model

import (
	"time"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// Job asks a worker to compute one calculation.
type Job struct {
	CalculationID string       // id of the stored calculation
	Inputs        score.Inputs // raw form values
	SubmittedAt   time.Time    // when the job was enqueued
}
