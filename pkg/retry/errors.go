package retry

import (
	"errors"
	"fmt"
	"strings"
)

// maxReportedErrors caps the violation list carried by a TerminalError to
// keep the final report readable.
const maxReportedErrors = 10

// remediationHints are appended to every TerminalError message. They describe
// the usual reasons an LLM keeps producing invalid content.
var remediationHints = []string{
	"the prompt may need more specific instructions",
	"the model may not be following the required output format",
	"the input material may be insufficient for this operation",
}

// ParseError marks a recoverable content-shape failure: the producer got a
// response but could not interpret the raw output as structured data. The
// engine treats it exactly like a validation failure and retries. Every other
// producer error is non-recoverable and propagates immediately.
type ParseError struct {
	// Format names the expected structure, e.g. "json".
	Format string
	// Err is the underlying decode error, if any.
	Err error
}

// NewParseError wraps a decode failure as a recoverable parse error.
func NewParseError(format string, err error) *ParseError {
	return &ParseError{Format: format, Err: err}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed structured payload (%s): %v", e.Format, e.Err)
	}
	return fmt.Sprintf("malformed structured payload (%s)", e.Format)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// TerminalError is the engine's final, unrecoverable outcome after retry
// exhaustion. Its message is the sole user-facing diagnostic: it never claims
// success and no default content accompanies it.
type TerminalError struct {
	// Context is the session name supplied to Do.
	Context string
	// Attempts is the total number of attempts made.
	Attempts int
	// Errors is the last attempt's violation list, capped to the first
	// maxReportedErrors entries.
	Errors []string
}

func (e *TerminalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "content generation for %q failed validation after %d attempts", e.Context, e.Attempts)
	if len(e.Errors) > 0 {
		b.WriteString("\nlast validation errors:")
		for _, v := range e.Errors {
			b.WriteString("\n  - ")
			b.WriteString(v)
		}
	}
	b.WriteString("\npossible causes:")
	for _, hint := range remediationHints {
		b.WriteString("\n  - ")
		b.WriteString(hint)
	}
	return b.String()
}

// IsTerminalError reports whether err is, or wraps, a *TerminalError.
func IsTerminalError(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// capErrors returns the first maxReportedErrors distinct entries in order.
func capErrors(errs []string) []string {
	seen := make(map[string]struct{}, len(errs))
	capped := make([]string, 0, min(len(errs), maxReportedErrors))
	for _, e := range errs {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		capped = append(capped, e)
		if len(capped) == maxReportedErrors {
			break
		}
	}
	return capped
}
