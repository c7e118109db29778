package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/lnkd/lnkd/internal/domain/calculation"
	"github.com/lnkd/lnkd/internal/domain/score"
	"github.com/lnkd/lnkd/pkg/logger"
)

const directoryPermission = 0o750

var errPending = errors.New("calculation still computing")

type acceptedResponse struct {
	ID    string            `json:"id"`
	Phase calculation.Phase `json:"phase"`
}

// Run submits cfg.Forms random forms, waits for each calculation to finish,
// and compares every total with score.Compute. It returns ErrMismatch when
// any total differs.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)
	log := logger.Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("forms", cfg.Forms),
		logger.Int("workers", cfg.Workers),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	forms := generateForms(cfg.Forms)
	stats.FormsGenerated = len(forms)

	outcomes := make([]Outcome, len(forms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, form := range forms {
		i, form := i, form
		g.Go(func() error {
			outcomes[i] = runForm(gctx, client, cfg.PollInterval, form)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("load run interrupted: %w", err)
	}

	tally(stats, outcomes)
	if cfg.Verbose {
		for _, o := range outcomes {
			if o.Status == StatusMismatch {
				log.Warn(ctx, "score mismatch",
					logger.String("calculationID", o.ID),
					logger.String("expected", o.Expected),
					logger.String("got", o.Got),
				)
			}
		}
	}
	if cfg.OutputFile != "" {
		if err := saveOutcomes(cfg.OutputFile, outcomes); err != nil {
			log.Warn(ctx, "failed to save outcomes", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d calculations", ErrMismatch, stats.Mismatched, len(forms))
	}
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Forms <= 0 {
		cfg.Forms = DefaultForms
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var health struct {
		Status string `json:"status"`
	}
	if _, err := client.getJSON(ctx, "/healthz", &health); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, health.Status)
	}
	return nil
}

// runForm submits one form and polls it until done.
func runForm(ctx context.Context, client *HTTPClient, pollEvery time.Duration, form score.Inputs) Outcome {
	out := Outcome{Inputs: form, Expected: score.Compute(form).Display}

	var ack acceptedResponse
	status, err := client.submit(ctx, form, &ack)
	if err != nil {
		out.Status = StatusFailed
		if status == http.StatusTooManyRequests {
			out.Status = StatusRejected
		}
		out.Error = err.Error()
		return out
	}
	out.ID = ack.ID

	var c calculation.Calculation
	poll := func() error {
		c = calculation.Calculation{}
		if _, err := client.getJSON(ctx, "/api/v1/calculations/"+ack.ID, &c); err != nil {
			return backoff.Permanent(err)
		}
		if c.Phase != calculation.PhaseDone || c.Result == nil {
			return errPending
		}
		return nil
	}
	if err := backoff.Retry(poll, backoff.WithContext(backoff.NewConstantBackOff(pollEvery), ctx)); err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		return out
	}

	out.Got = c.Result.Display
	out.Status = StatusMatched
	if out.Got != out.Expected {
		out.Status = StatusMismatch
	}
	return out
}

func tally(stats *Stats, outcomes []Outcome) {
	for _, o := range outcomes {
		switch o.Status {
		case StatusMatched:
			stats.Matched++
		case StatusMismatch:
			stats.Mismatched++
		case StatusRejected:
			stats.Rejected++
		default:
			stats.Failed++
		}
	}
}

// saveOutcomes writes outcomes as an indented JSON array.
func saveOutcomes(filename string, outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return errors.New("no outcomes to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.FormsGenerated) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("formsGenerated", stats.FormsGenerated),
		logger.Int("matched", stats.Matched),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("formsPerSecond", perSecond),
	)
}
