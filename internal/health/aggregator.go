package health

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "IMA_BACK-END/internal/health"

// DefaultProbeTimeout bounds a single probe when no timeout is configured.
const DefaultProbeTimeout = 2 * time.Second

// Report is the merged outcome of an aggregate check.
type Report struct {
	// Status is StatusOK iff every probe was healthy.
	Status string

	// Details maps probe name to StatusOK or StatusFail.
	Details map[string]string

	// Results holds the individual runs in registration order.
	Results []Result
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout sets the per-probe deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used to report failing probes.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records every probe run in m.
func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Aggregator) {
		if tp != nil {
			a.tracer = tp.Tracer(tracerName)
		}
	}
}

// Aggregator runs a named set of probes and merges their outcomes.
type Aggregator struct {
	timeout time.Duration
	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu     sync.RWMutex
	probes map[string]Probe
	order  []string
}

// NewAggregator creates an aggregator with no probes registered.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		timeout: DefaultProbeTimeout,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
		probes:  make(map[string]Probe),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds probes under their own names. Registering a name twice
// replaces the earlier probe but keeps its position.
func (a *Aggregator) Register(probes ...Probe) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range probes {
		name := p.Name()
		if _, exists := a.probes[name]; !exists {
			a.order = append(a.order, name)
		}
		a.probes[name] = p
	}
}

// Names returns the registered probe names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Probe returns the probe registered under name.
func (a *Aggregator) Probe(name string) (Probe, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.probes[name]
	if !ok {
		return nil, ErrProbeNotFound
	}
	return p, nil
}

// Run executes a single probe with the aggregator's timeout, tracing,
// metrics and logging applied.
func (a *Aggregator) Run(ctx context.Context, p Probe) Result {
	ctx, span := a.tracer.Start(ctx, "health.probe",
		trace.WithAttributes(attribute.String("probe.name", p.Name())))
	defer span.End()

	result := Run(ctx, p, a.timeout)

	span.SetAttributes(attribute.String("probe.outcome", result.Outcome.String()))
	switch result.Outcome {
	case OutcomeFailed:
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
		a.logger.Warn("health probe failed",
			zap.String("probe", result.Name),
			zap.Duration("duration", result.Duration),
			zap.Error(result.Err))
	case OutcomeUnhealthy:
		a.logger.Warn("health probe reported unhealthy",
			zap.String("probe", result.Name),
			zap.Duration("duration", result.Duration))
	default:
		a.logger.Debug("health probe passed",
			zap.String("probe", result.Name),
			zap.Duration("duration", result.Duration))
	}

	a.metrics.observe(result)
	return result
}

// CheckAll runs every registered probe concurrently and merges the results.
// A failing probe never stops the others; the call returns once all of them
// have answered or hit their deadline.
func (a *Aggregator) CheckAll(ctx context.Context) Report {
	a.mu.RLock()
	probes := make([]Probe, len(a.order))
	for i, name := range a.order {
		probes[i] = a.probes[name]
	}
	a.mu.RUnlock()

	results := make([]Result, len(probes))

	// Probes report through results, never through the group error, so one
	// failure cannot cancel its siblings.
	var g errgroup.Group
	for i, p := range probes {
		i, p := i, p
		g.Go(func() error {
			results[i] = a.Run(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return Merge(results)
}

// Merge reduces individual results to one report. An empty set is healthy.
func Merge(results []Result) Report {
	report := Report{
		Status:  StatusOK,
		Details: make(map[string]string, len(results)),
		Results: results,
	}
	for _, r := range results {
		status := r.Status()
		report.Details[r.Name] = status
		if status != StatusOK {
			report.Status = StatusFail
		}
	}
	return report
}
