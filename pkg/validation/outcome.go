package validation

import "fmt"

// Outcome is the result of one validation pass.
//
// Outcome is a value type: it is created fresh per call, carries no identity,
// and is safe to copy. The invariant Passed == (len(Errors) == 0) holds for
// every Outcome returned by this package.
type Outcome struct {
	// Passed is true iff no errors were found.
	Passed bool `json:"passed"`

	// Errors are human-readable violation descriptions, each referencing the
	// offending field path when the content is structured.
	Errors []string `json:"errors,omitempty"`

	// Warnings are non-fatal observations. They never affect Passed.
	Warnings []string `json:"warnings,omitempty"`
}

// addError appends a formatted violation.
func (o *Outcome) addError(format string, args ...any) {
	o.Errors = append(o.Errors, fmt.Sprintf(format, args...))
}

// addWarning appends a formatted non-fatal observation.
func (o *Outcome) addWarning(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// merge folds a child outcome into o, preserving error order.
func (o *Outcome) merge(child Outcome) {
	o.Errors = append(o.Errors, child.Errors...)
	o.Warnings = append(o.Warnings, child.Warnings...)
}

// finalize sets Passed from the accumulated errors and returns the value.
// Every public entry point returns through finalize.
func (o Outcome) finalize() Outcome {
	o.Passed = len(o.Errors) == 0
	return o
}
