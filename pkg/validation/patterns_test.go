package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinLengthFor(t *testing.T) {
	assert.Equal(t, 2, MinLengthFor("name"))
	assert.Equal(t, 2, MinLengthFor("id"))
	assert.Equal(t, 3, MinLengthFor("title"))
	assert.Equal(t, DefaultMinLength, MinLengthFor("premise"))
	assert.Equal(t, DefaultMinLength, MinLengthFor("no-such-category"))
}

func TestForbiddenPatternsCaseInsensitive(t *testing.T) {
	for _, text := range []string{"tbd", "TBD", "Tbd"} {
		outcome := ValidateContent("The finale is "+text+" for now.", "field", DefaultMinLength, false)
		assert.False(t, outcome.Passed, "case variant %q should be caught", text)
	}
}

func TestForbiddenPatternsDoNotFlagOrdinaryProse(t *testing.T) {
	clean := []string{
		"Mara climbs the lighthouse stairs two at a time.",
		"The harbor bell rings once, then falls silent.",
		"Thornwood Hollow sleeps under a blanket of fog.",
	}
	for _, text := range clean {
		outcome := ValidateContent(text, "prose", DefaultMinLength, false)
		assert.True(t, outcome.Passed, "clean prose flagged: %q -> %v", text, outcome.Errors)
	}
}
