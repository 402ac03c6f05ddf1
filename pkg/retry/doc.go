// Package retry drives repeated invocation of an unreliable content producer
// until its output passes a validator, applying exponential backoff between
// failed attempts.
//
// The engine owns the retry loop end to end: producers must not retry
// internally, and validators must be pure, fast functions. The engine's core
// guarantee is that no fallback or synthesized default content is ever
// returned as if it were valid — the only outcomes are a validator-accepted
// candidate, a *TerminalError after retry exhaustion, or an unchanged
// non-recoverable producer error.
//
// # Usage
//
// Build an engine once, then run sessions through it:
//
//	engine, err := retry.NewEngine(retry.DefaultPolicy(), logger)
//	if err != nil {
//	    return err
//	}
//
//	outline, err := retry.Do(ctx, engine, "episode-outline",
//	    func(ctx context.Context) (map[string]any, error) {
//	        return generateOutline(ctx, premise)
//	    },
//	    func(outline map[string]any) validation.Outcome {
//	        return validation.ValidateRequiredFields(outline, []string{"title", "premise", "summary"})
//	    },
//	)
//
// # Error taxonomy
//
//   - A failing validation outcome is recoverable and drives a retry.
//   - A *ParseError from the producer (raw output could not be interpreted as
//     structured data) is recoverable and treated like a validation failure.
//   - Any other producer error is non-recoverable: it propagates unchanged,
//     immediately, consuming no further retry budget.
//   - *TerminalError is returned once the attempt budget is exhausted. It
//     carries the last attempt's violations (capped for readability) and
//     remediation hints.
//
// # Concurrency
//
// One call to Do is one strictly sequential session. Independent sessions may
// run concurrently against a shared Engine: the policy is read-only after
// construction and all per-session state is local to the call. Cancelling the
// context aborts in-flight waits and prevents further attempts; no partial
// candidate is ever returned on cancellation.
package retry
