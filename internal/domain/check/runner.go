// Package check runs ordered, gated steps and folds their outcomes into a
// domain.Report. A failing step never stops the run: steps that depend on it
// are recorded as not run and every independent step still executes.
package check

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/podcheck/podcheck/internal/domain"
)

// Option configures a Run.
type Option func(*runner)

type runner struct {
	timeout  time.Duration
	observer func(domain.CheckResult)
	log      zerolog.Logger
	now      func() time.Time
}

// WithStepTimeout bounds each step with its own deadline. Zero disables it.
func WithStepTimeout(d time.Duration) Option {
	return func(r *runner) { r.timeout = d }
}

// WithObserver is called with each result as soon as it is known.
func WithObserver(fn func(domain.CheckResult)) Option {
	return func(r *runner) { r.observer = fn }
}

// WithLogger routes step tracing to log.
func WithLogger(log zerolog.Logger) Option {
	return func(r *runner) { r.log = log }
}

// WithClock overrides time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *runner) { r.now = now }
}

// Run executes steps in order. A step is attempted only when the step named
// by its Requires field passed.
func Run(ctx context.Context, title string, steps []domain.Step, opts ...Option) domain.Report {
	r := &runner{log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	report := domain.Report{Title: title, StartedAt: r.now()}
	passed := make(map[string]bool, len(steps))

	for _, step := range steps {
		res := domain.CheckResult{
			ID:     step.ID,
			Name:   domain.DisplayName(step.ID),
			Status: domain.StatusNotRun,
		}

		switch {
		case step.Requires != "" && !passed[step.Requires]:
			r.log.Debug().Str("check", step.ID).Str("requires", step.Requires).Msg("skipped")
		case ctx.Err() != nil:
			res.Status = domain.StatusFailed
			res.Detail = ctx.Err().Error()
		default:
			r.log.Debug().Str("check", step.ID).Msg("running")
			detail, err := r.attempt(ctx, step)
			if err != nil {
				res.Status = domain.StatusFailed
				res.Detail = err.Error()
				r.log.Debug().Str("check", step.ID).Err(err).Msg("check failed")
			} else {
				res.Status = domain.StatusPassed
				res.Detail = detail
				passed[step.ID] = true
			}
		}

		report.Results = append(report.Results, res)
		if r.observer != nil && res.Status != domain.StatusNotRun {
			r.observer(res)
		}
	}

	report.FinishedAt = r.now()
	return report
}

// attempt runs a single action, converting a panic into an error.
func (r *runner) attempt(ctx context.Context, step domain.Step) (detail string, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			detail = ""
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if step.Run == nil {
		return "", fmt.Errorf("no action for %s", step.ID)
	}
	return step.Run(ctx)
}

// Plan returns the report for steps that were never attempted, used when a
// precondition rules out the whole run.
func Plan(title string, steps []domain.Step) domain.Report {
	now := time.Now()
	report := domain.Report{Title: title, StartedAt: now, FinishedAt: now}
	for _, step := range steps {
		report.Results = append(report.Results, domain.CheckResult{
			ID:     step.ID,
			Name:   domain.DisplayName(step.ID),
			Status: domain.StatusNotRun,
		})
	}
	return report
}
