package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind is the closed enumeration of content shapes the validator understands.
// Dispatch over Kind is exhaustive: every value maps to exactly one Kind, so
// unexpected shapes cannot fall through silently.
type Kind int

const (
	// KindEmpty is absent content: nil, blank strings, empty mappings and
	// empty sequences.
	KindEmpty Kind = iota
	// KindScalar is a string or any other leaf value.
	KindScalar
	// KindMapping is a key/value mapping.
	KindMapping
	// KindSequence is an ordered list.
	KindSequence
)

// KindOf classifies content into one of the four shapes.
func KindOf(content any) Kind {
	if content == nil {
		return KindEmpty
	}
	switch v := content.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return KindEmpty
		}
		return KindScalar
	case []byte:
		if strings.TrimSpace(string(v)) == "" {
			return KindEmpty
		}
		return KindScalar
	}

	rv := reflect.ValueOf(content)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindEmpty
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Len() == 0 {
			return KindEmpty
		}
		return KindMapping
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return KindEmpty
		}
		return KindSequence
	default:
		return KindScalar
	}
}

// ValidateContent checks content for forbidden placeholder/generic/fallback
// markers and minimum-length requirements, recursing into mappings and lists.
//
// Scalar strings are scanned against the forbidden-pattern set and must be at
// least minLen characters after trimming. Mapping values get a
// context-sensitive minimum: identifier-like keys (containing name/id/key/code)
// use a short minimum so proper nouns pass, all other keys use a relaxed prose
// minimum; both override minLen at that level. List elements are validated
// under index-qualified paths, string elements with the short minimum.
//
// Empty or absent content is an error unless allowEmpty is true. Violations
// from every nesting level accumulate; validation never short-circuits.
func ValidateContent(content any, field string, minLen int, allowEmpty bool) Outcome {
	var o Outcome
	validateInto(&o, content, field, minLen, allowEmpty)
	return o.finalize()
}

// validateInto is the recursive worker behind ValidateContent.
func validateInto(o *Outcome, content any, field string, minLen int, allowEmpty bool) {
	switch KindOf(content) {
	case KindEmpty:
		if !allowEmpty {
			o.addError("%s: content is empty", field)
		}

	case KindScalar:
		validateScalar(o, content, field, minLen)

	case KindMapping:
		m := asMapping(content)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childMin := proseMinLength
			if isIdentifierKey(k) {
				childMin = identifierMinLength
			}
			validateInto(o, m[k], field+"."+k, childMin, false)
		}

	case KindSequence:
		for i, elem := range asSequence(content) {
			childMin := minLen
			if _, ok := elem.(string); ok {
				childMin = identifierMinLength
			}
			validateInto(o, elem, fmt.Sprintf("%s[%d]", field, i), childMin, false)
		}
	}
}

// validateScalar scans one leaf value against the forbidden-pattern set and
// enforces the minimum length on its trimmed serialized form.
func validateScalar(o *Outcome, content any, field string, minLen int) {
	text, ok := stringify(content)
	if !ok {
		o.addError("%s: content could not be serialized for inspection", field)
		return
	}
	for _, p := range forbiddenPatterns {
		if match := p.re.FindString(text); match != "" {
			o.addError("%s: contains %s %q", field, p.Category, match)
		}
	}
	trimmed := strings.TrimSpace(text)
	if n := utf8.RuneCountInString(trimmed); n < minLen {
		o.addError("%s: content too short (%d chars, minimum %d)", field, n, minLen)
	}
}

// ValidateRequiredFields checks that every required key is present, non-blank,
// and passes ValidateContent. Violations for all fields accumulate; a missing
// field never stops inspection of the rest.
func ValidateRequiredFields(data map[string]any, required []string) Outcome {
	var o Outcome
	for _, f := range required {
		v, ok := data[f]
		if !ok {
			o.addError("%s: required field is missing", f)
			continue
		}
		if KindOf(v) == KindEmpty {
			o.addError("%s: required field is empty", f)
			continue
		}
		child := ValidateContent(v, f, DefaultMinLength, false)
		o.merge(child)
	}
	return o.finalize()
}

// ValidateNameList checks a list of generated names for the given category.
// An empty list is a single, immediate failure. Otherwise every name is
// checked against the category's length threshold and generic-name patterns;
// all violations are reported, not just the first.
func ValidateNameList(names []string, category NameCategory) Outcome {
	var o Outcome
	if len(names) == 0 {
		o.addError("names: no %s names provided", category)
		return o.finalize()
	}

	threshold, ok := nameLengthThresholds[category]
	if !ok {
		threshold = identifierMinLength
	}
	patterns := genericNamePatterns[category]
	seen := make(map[string]int, len(names))

	for i, name := range names {
		field := fmt.Sprintf("names[%d]", i)
		trimmed := strings.TrimSpace(name)
		if first, dup := seen[strings.ToLower(trimmed)]; dup {
			// Duplicates are suspicious in generated name lists but not
			// fatal: the model may legitimately reuse a name.
			o.addWarning("%s: duplicate of names[%d] (%q)", field, first, name)
		} else {
			seen[strings.ToLower(trimmed)] = i
		}
		if n := utf8.RuneCountInString(trimmed); n < threshold {
			o.addError("%s: %s name %q too short (%d chars, minimum %d)", field, category, name, n, threshold)
		}
		for _, re := range patterns {
			if re.MatchString(trimmed) {
				o.addError("%s: %q is a generic %s name", field, name, category)
				break
			}
		}
	}
	return o.finalize()
}

// isIdentifierKey reports whether a mapping key looks identifier-like.
func isIdentifierKey(key string) bool {
	lower := strings.ToLower(key)
	for _, token := range identifierKeyTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// stringify returns the text form of a leaf value used for pattern scanning.
// Strings pass through untouched; everything else is JSON-serialized so
// patterns embedded in nested string values are still caught regardless of
// the original representation.
func stringify(content any) (string, bool) {
	switch v := content.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	b, err := json.Marshal(content)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// asMapping normalizes any string-keyed (or printable-keyed) map to
// map[string]any.
func asMapping(content any) map[string]any {
	if m, ok := content.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(content)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}

// asSequence normalizes any slice or array to []any.
func asSequence(content any) []any {
	if s, ok := content.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(content)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
