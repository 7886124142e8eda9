package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Per-dependency status values reported in health payloads.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Probe answers whether a single dependency is currently usable.
//
// Check returns true when the dependency answered correctly, false when it
// answered but reported itself unhealthy, and an error when the check could
// not be completed at all.
type Probe interface {
	Name() string
	Check(ctx context.Context) (bool, error)
}

// ProbeFunc adapts an ordinary function to the Probe interface.
type ProbeFunc struct {
	name string
	fn   func(context.Context) (bool, error)
}

// NewProbeFunc creates a named probe backed by fn.
func NewProbeFunc(name string, fn func(context.Context) (bool, error)) *ProbeFunc {
	return &ProbeFunc{name: name, fn: fn}
}

// Name returns the probe name.
func (p *ProbeFunc) Name() string {
	return p.name
}

// Check calls the wrapped function.
func (p *ProbeFunc) Check(ctx context.Context) (bool, error) {
	return p.fn(ctx)
}

// Outcome tags how a probe run ended.
type Outcome int

const (
	// OutcomeHealthy means the probe ran and confirmed the dependency.
	OutcomeHealthy Outcome = iota
	// OutcomeUnhealthy means the probe ran and the dependency answered negatively.
	OutcomeUnhealthy
	// OutcomeFailed means the probe could not run to completion.
	OutcomeFailed
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeHealthy:
		return "healthy"
	case OutcomeUnhealthy:
		return "unhealthy"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one probe run.
type Result struct {
	Name     string
	Outcome  Outcome
	Err      error // set only when Outcome is OutcomeFailed
	Duration time.Duration
}

// Healthy reports whether the dependency was confirmed healthy.
func (r Result) Healthy() bool {
	return r.Outcome == OutcomeHealthy
}

// Status returns StatusOK for a healthy result and StatusFail otherwise.
func (r Result) Status() string {
	if r.Healthy() {
		return StatusOK
	}
	return StatusFail
}

type reply struct {
	ok  bool
	err error
}

// Run executes p with its own deadline and reduces whatever happens to a
// Result. A zero timeout leaves the deadline to ctx. Run never returns an
// error and never panics.
func Run(ctx context.Context, p Probe, timeout time.Duration) Result {
	start := time.Now()
	parent := ctx

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	replyCh := make(chan reply, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				replyCh <- reply{err: fmt.Errorf("%w: %v", ErrProbePanic, rec)}
			}
		}()
		ok, err := p.Check(ctx)
		replyCh <- reply{ok: ok, err: err}
	}()

	result := Result{Name: p.Name()}

	select {
	case r := <-replyCh:
		switch {
		case r.err != nil:
			result.Outcome = OutcomeFailed
			result.Err = deadlineError(parent, ctx, r.err, timeout)
		case r.ok:
			result.Outcome = OutcomeHealthy
		default:
			result.Outcome = OutcomeUnhealthy
		}
	case <-ctx.Done():
		result.Outcome = OutcomeFailed
		result.Err = deadlineError(parent, ctx, ctx.Err(), timeout)
	}

	result.Duration = time.Since(start)
	return result
}

// deadlineError rewrites errors caused by a deadline so callers can match
// them with ErrProbeTimeout. The probe timeout is only named when it is the
// deadline that fired; an earlier deadline on parent is reported as is.
func deadlineError(parent, ctx context.Context, err error, timeout time.Duration) error {
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) || !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if parentErr := parent.Err(); errors.Is(parentErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrProbeTimeout, parentErr)
	}
	if timeout > 0 {
		return fmt.Errorf("%w after %s", ErrProbeTimeout, timeout)
	}
	return ErrProbeTimeout
}
