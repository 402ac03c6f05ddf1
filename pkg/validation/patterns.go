package validation

import "regexp"

// PatternCategory labels the kind of forbidden text a pattern detects.
// Categories appear verbatim in violation messages.
type PatternCategory string

const (
	// CategoryPlaceholder marks deferred or unfinished text ("TBD", "TODO").
	CategoryPlaceholder PatternCategory = "placeholder"
	// CategoryGenericLabel marks numbered generic labels ("Location 1").
	CategoryGenericLabel PatternCategory = "generic label"
	// CategoryTemplateToken marks bracket-delimited template tokens ("[name]").
	CategoryTemplateToken PatternCategory = "template token"
	// CategoryMissingValue marks absent-value markers ("Unknown", "N/A").
	CategoryMissingValue PatternCategory = "missing value"
	// CategoryBoilerplate marks filler prose ("lorem ipsum").
	CategoryBoilerplate PatternCategory = "boilerplate"
)

// ForbiddenPattern is one entry in the process-wide forbidden-pattern set.
type ForbiddenPattern struct {
	Category PatternCategory
	re       *regexp.Regexp
}

// forbiddenPatterns is the ordered, immutable set of text patterns that
// indicate generic, fallback, or placeholder content. All patterns are
// case-insensitive. The table is compiled once at init and never mutated.
var forbiddenPatterns = []ForbiddenPattern{
	{CategoryPlaceholder, regexp.MustCompile(`(?i)\btbd\b`)},
	{CategoryPlaceholder, regexp.MustCompile(`(?i)\btodo\b`)},
	{CategoryPlaceholder, regexp.MustCompile(`(?i)\bfixme\b`)},
	{CategoryPlaceholder, regexp.MustCompile(`(?i)\bplaceholder\b`)},
	{CategoryPlaceholder, regexp.MustCompile(`(?i)\bto be (?:determined|decided|filled in|written)\b`)},
	{CategoryPlaceholder, regexp.MustCompile(`(?i)\binsert [\w ]{1,40} here\b`)},
	{CategoryGenericLabel, regexp.MustCompile(`(?i)\b(?:character|location|scene|episode|chapter) \d+\b`)},
	{CategoryGenericLabel, regexp.MustCompile(`(?i)\bmain character\b`)},
	{CategoryTemplateToken, regexp.MustCompile(`(?i)\[[a-z][a-z _-]{1,30}\]`)},
	{CategoryTemplateToken, regexp.MustCompile(`(?i)<[a-z][a-z _-]{1,30}>`)},
	{CategoryTemplateToken, regexp.MustCompile(`(?i)\{[a-z][a-z _-]{1,30}\}`)},
	{CategoryMissingValue, regexp.MustCompile(`(?i)\bunknown\b`)},
	{CategoryMissingValue, regexp.MustCompile(`(?i)\bn/a\b`)},
	{CategoryMissingValue, regexp.MustCompile(`(?i)\bnot (?:specified|available|provided)\b`)},
	{CategoryBoilerplate, regexp.MustCompile(`(?i)\blorem ipsum\b`)},
	{CategoryBoilerplate, regexp.MustCompile(`(?i)\b(?:example|sample) text\b`)},
	{CategoryBoilerplate, regexp.MustCompile(`(?i)\byour [\w ]{1,30} here\b`)},
}

// NameCategory selects the generic-name table and length threshold used by
// ValidateNameList.
type NameCategory string

const (
	// NameCategoryCharacter validates character names (minimum 2 chars).
	NameCategoryCharacter NameCategory = "character"
	// NameCategoryLocation validates location names (minimum 3 chars).
	NameCategoryLocation NameCategory = "location"
)

// genericNamePatterns detect names an LLM emits when it has nothing real to
// say. Numbered and lettered forms match as prefixes ("Character 12",
// "Place B"); bare forms match exactly. Case-insensitive, immutable.
var genericNamePatterns = map[NameCategory][]*regexp.Regexp{
	NameCategoryCharacter: {
		regexp.MustCompile(`(?i)^character \d+`),
		regexp.MustCompile(`(?i)^main character$`),
		regexp.MustCompile(`(?i)^protagonist$`),
		regexp.MustCompile(`(?i)^antagonist$`),
		regexp.MustCompile(`(?i)^hero$`),
		regexp.MustCompile(`(?i)^villain$`),
		regexp.MustCompile(`(?i)^narrator$`),
	},
	NameCategoryLocation: {
		regexp.MustCompile(`(?i)^location \d+`),
		regexp.MustCompile(`(?i)^place [a-z0-9]`),
		regexp.MustCompile(`(?i)^setting$`),
		regexp.MustCompile(`(?i)^town$`),
		regexp.MustCompile(`(?i)^city$`),
		regexp.MustCompile(`(?i)^somewhere$`),
	},
}

// nameLengthThresholds holds the per-category minimum character counts for
// ValidateNameList.
var nameLengthThresholds = map[NameCategory]int{
	NameCategoryCharacter: 2,
	NameCategoryLocation:  3,
}

// Minimum-length configuration. Immutable.
const (
	// DefaultMinLength is the generic minimum character count applied to
	// scalar content when the caller has no better requirement.
	DefaultMinLength = 10

	// identifierMinLength applies to mapping values under identifier-like
	// keys (name, id, key, code) and to string elements of lists, so short
	// proper nouns and single words are not rejected.
	identifierMinLength = 2

	// proseMinLength applies to every other mapping value. It overrides the
	// caller's generic default at that nesting level: large enough to catch
	// empty prose fields, small enough to tolerate terse values.
	proseMinLength = 5
)

// fieldMinimums maps semantic field categories to minimum character counts.
// Used by callers composing validators for specific payload shapes.
var fieldMinimums = map[string]int{
	"name":        identifierMinLength,
	"id":          identifierMinLength,
	"key":         identifierMinLength,
	"code":        identifierMinLength,
	"title":       3,
	"description": DefaultMinLength,
	"summary":     DefaultMinLength,
	"premise":     DefaultMinLength,
}

// MinLengthFor returns the configured minimum character count for a semantic
// field category, or DefaultMinLength when the category is unknown.
func MinLengthFor(category string) int {
	if n, ok := fieldMinimums[category]; ok {
		return n
	}
	return DefaultMinLength
}

// identifierKeyTokens are substrings that mark a mapping key as
// identifier-like for the context-sensitive minimum length.
var identifierKeyTokens = []string{"name", "id", "key", "code"}
