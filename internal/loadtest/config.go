// Package loadtest drives a running lnkd service with random forms and
// checks every asynchronous result against the local score engine.
package loadtest

import (
	"errors"
	"time"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// Errors reported by Run.
var (
	ErrUnhealthy = errors.New("service unhealthy")
	ErrMismatch  = errors.New("score mismatch")
)

// Default settings.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultForms        = 1000
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Forms        int           // Number of forms to submit
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between polls of one calculation
	OutputFile   string        // Optional JSON report of every outcome
	Verbose      bool          // Log each mismatch
}

// Outcome is what happened to one submitted form.
type Outcome struct {
	Inputs   score.Inputs `json:"inputs"`
	ID       string       `json:"id,omitempty"`
	Status   string       `json:"status"`
	Expected string       `json:"expected"`
	Got      string       `json:"got,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Outcome statuses.
const (
	StatusMatched  = "matched"
	StatusMismatch = "mismatch"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Stats holds run statistics.
type Stats struct {
	FormsGenerated int
	Matched        int
	Mismatched     int
	Rejected       int
	Failed         int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
