package retry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/genvalid/pkg/validation"
)

const instrumentationName = "github.com/fyrsmithlabs/genvalid/pkg/retry"

// Session outcomes recorded in metrics.
const (
	outcomeSucceeded = "succeeded"
	outcomeExhausted = "exhausted"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
)

// attemptLogErrors is how many violations a per-attempt log line carries.
const attemptLogErrors = 3

// Producer is the operation being retried. It must be argument-less (embed
// parameters via closure), must not retry internally, and returns either a
// candidate, a *ParseError when the raw output cannot be interpreted as
// structured data, or any other error to abort the session.
type Producer[T any] func(ctx context.Context) (T, error)

// Validator judges a produced candidate. It must be deterministic and fast
// (no I/O): it runs inside the hot retry loop once per attempt.
type Validator[T any] func(candidate T) validation.Outcome

// Engine runs retry sessions under a fixed policy. An Engine is safe for
// concurrent use; all mutable state lives in the individual session.
type Engine struct {
	policy *Policy
	logger *zap.Logger

	tracer         trace.Tracer
	meter          metric.Meter
	attemptHist    metric.Int64Histogram
	sessionCounter metric.Int64Counter

	// sleep waits for the backoff delay or context cancellation, whichever
	// comes first. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine. A nil policy means DefaultPolicy; a nil logger
// means no logging.
func NewEngine(policy *Policy, logger *zap.Logger) (*Engine, error) {
	if policy == nil {
		policy = DefaultPolicy()
	}
	policy = policy.clone()
	policy.ApplyDefaults()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		policy: policy,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
		sleep:  sleepContext,
	}
	e.initMetrics()

	return e, nil
}

// initMetrics initializes OpenTelemetry metrics.
func (e *Engine) initMetrics() {
	var err error

	e.attemptHist, err = e.meter.Int64Histogram(
		"genvalid.retry.attempts",
		metric.WithDescription("Attempts consumed per retry session"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		e.logger.Warn("failed to create attempt histogram", zap.Error(err))
	}

	e.sessionCounter, err = e.meter.Int64Counter(
		"genvalid.retry.sessions_total",
		metric.WithDescription("Total retry sessions by outcome"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		e.logger.Warn("failed to create session counter", zap.Error(err))
	}
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	return *e.policy
}

// Do runs one retry session: invoke the producer, validate the candidate,
// and either return it, back off and retry, or fail.
//
// On success the first validator-accepted candidate is returned unchanged.
// After MaxAttempts failed attempts Do returns a *TerminalError carrying the
// last attempt's violations. A non-recoverable producer error (anything that
// is not a *ParseError) propagates unchanged without consuming further
// attempts. Context cancellation aborts the in-flight wait or attempt and
// returns ctx's error; no candidate is returned in that case.
func Do[T any](ctx context.Context, e *Engine, name string, produce Producer[T], validate Validator[T]) (T, error) {
	var zero T
	if e == nil {
		return zero, errors.New("retry: engine is required")
	}
	if produce == nil {
		return zero, errors.New("retry: producer is required")
	}
	if validate == nil {
		return zero, errors.New("retry: validator is required")
	}

	sessionID := uuid.NewString()
	log := e.logger.With(
		zap.String("context", name),
		zap.String("session_id", sessionID),
	)

	ctx, span := e.tracer.Start(ctx, "retry.session", trace.WithAttributes(
		attribute.String("retry.context", name),
		attribute.String("retry.session_id", sessionID),
		attribute.Int("retry.max_attempts", e.policy.MaxAttempts),
	))
	defer span.End()

	delay := e.policy.InitialDelay
	var lastErrors []string

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, e.finishCancelled(ctx, span, log, name, attempt, err)
		}

		candidate, err := produce(ctx)
		switch {
		case err == nil:
			outcome := validate(candidate)
			if outcome.Passed {
				if e.policy.LogAttempts && attempt > 1 {
					log.Info("validation passed after retries",
						zap.Int("attempts", attempt),
					)
				}
				e.recordSession(ctx, span, outcomeSucceeded, attempt)
				return candidate, nil
			}
			// Overwrite, not append: only the most recent failure's
			// violations reach the final report.
			lastErrors = outcome.Errors

		case IsParseError(err):
			lastErrors = []string{err.Error()}

		default:
			// Non-recoverable: transport, auth, programming defects.
			// Propagate unchanged, preserving the original error identity.
			log.Error("producer failed with non-recoverable error",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "producer failure")
			e.recordSession(ctx, span, outcomeFailed, attempt)
			return zero, err
		}

		if e.policy.LogAttempts {
			log.Warn("attempt produced invalid content",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", e.policy.MaxAttempts),
				zap.Int("violations", len(lastErrors)),
				zap.Strings("first_violations", firstN(lastErrors, attemptLogErrors)),
			)
		}

		if attempt == e.policy.MaxAttempts {
			break
		}

		// The current wait uses the pre-update delay; the growth applies to
		// the next one.
		if err := e.sleep(ctx, delay); err != nil {
			return zero, e.finishCancelled(ctx, span, log, name, attempt, err)
		}
		if e.policy.ExponentialBackoff {
			next := time.Duration(float64(delay) * e.policy.BackoffMultiplier)
			if next > e.policy.MaxDelay {
				next = e.policy.MaxDelay
			}
			delay = next
		}
	}

	terminal := &TerminalError{
		Context:  name,
		Attempts: e.policy.MaxAttempts,
		Errors:   capErrors(lastErrors),
	}
	log.Error("retries exhausted without valid content",
		zap.Int("attempts", terminal.Attempts),
		zap.Int("violations", len(lastErrors)),
	)
	span.SetStatus(codes.Error, "retries exhausted")
	e.recordSession(ctx, span, outcomeExhausted, e.policy.MaxAttempts)
	return zero, terminal
}

// Wrap curries a producer and validator into a single operation that runs a
// full retry session per call. An empty name defaults to the producer's
// function identifier.
func Wrap[T any](e *Engine, name string, fn Producer[T], validate Validator[T]) Producer[T] {
	if name == "" {
		name = functionName(fn)
	}
	return func(ctx context.Context) (T, error) {
		return Do(ctx, e, name, fn, validate)
	}
}

// finishCancelled records a cancelled session and wraps ctx's error with the
// session context name.
func (e *Engine) finishCancelled(ctx context.Context, span trace.Span, log *zap.Logger, name string, attempt int, err error) error {
	if e.policy.LogAttempts {
		log.Warn("retry session cancelled",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	span.SetStatus(codes.Error, "cancelled")
	e.recordSession(ctx, span, outcomeCancelled, attempt)
	return fmt.Errorf("%s: %w", name, err)
}

// recordSession emits the per-session metrics and span attributes.
func (e *Engine) recordSession(ctx context.Context, span trace.Span, outcome string, attempts int) {
	span.SetAttributes(
		attribute.String("retry.outcome", outcome),
		attribute.Int("retry.attempts", attempts),
	)
	if e.attemptHist != nil {
		e.attemptHist.Record(ctx, int64(attempts),
			metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if e.sessionCounter != nil {
		e.sessionCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// firstN returns at most n leading entries.
func firstN(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

// functionName resolves a readable identifier for a wrapped function.
func functionName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "producer"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
