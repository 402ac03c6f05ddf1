// Package validation inspects generated content for placeholder, generic,
// and fallback text, and enforces minimum-length requirements on prose fields.
//
// The validator is the gatekeeper of the retry engine (pkg/retry): every
// candidate produced by an LLM call is inspected here before it is accepted.
// Content that contains markers like "TBD", "Location 1", or bracket-delimited
// template tokens is rejected with a per-field list of violations, so the
// caller can regenerate instead of shipping filler text.
//
// The package supports:
//   - Recursive inspection of strings, mappings, and ordered lists
//   - A process-wide, immutable forbidden-pattern taxonomy
//   - Context-sensitive minimum lengths (identifier-like fields tolerate
//     short proper nouns, prose fields do not)
//   - Required-field checks and name-list checks for characters and locations
//
// # Usage
//
// Validate a structured candidate:
//
//	outcome := validation.ValidateContent(candidate, "episode", validation.DefaultMinLength, false)
//	if !outcome.Passed {
//	    for _, violation := range outcome.Errors {
//	        fmt.Println(violation)
//	    }
//	}
//
// Check that generated data carries the fields a pipeline stage needs:
//
//	outcome := validation.ValidateRequiredFields(data, []string{"title", "premise", "summary"})
//
// All functions are pure: they never panic, never perform I/O, and hold no
// state between calls. Malformed input (nil content, nil maps) is reported as
// a validation failure, not an error.
package validation
