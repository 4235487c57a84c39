package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholderNames(t *testing.T) {
	names := PlaceholderNames("Review {{lang}} code: {{code}} in {{lang}}")
	assert.Equal(t, []string{"lang", "code"}, names)
}

func TestPlaceholderNamesWhitespaceTolerant(t *testing.T) {
	names := PlaceholderNames("{{ name }} and {{  other_var  }}")
	assert.Equal(t, []string{"name", "other_var"}, names)
}

func TestPlaceholderNamesIgnoresMalformed(t *testing.T) {
	cases := []string{
		"{{1bad}}",      // leading digit
		"{{a b}}",       // interior space
		"{{}}",          // empty
		"{{unclosed",    // no closing braces
		"{ single }",    // single braces
		"{{a-b}}",       // hyphen is not an identifier char
		"plain content", // nothing at all
	}
	for _, content := range cases {
		assert.Empty(t, PlaceholderNames(content), "content: %q", content)
	}
}

func TestPlaceholderNamesAdjacent(t *testing.T) {
	names := PlaceholderNames("{{a}}{{b}}")
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("lang"))
	assert.True(t, IsIdentifier("_private"))
	assert.True(t, IsIdentifier("var2"))
	assert.True(t, IsIdentifier("UPPER_CASE"))

	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("2var"))
	assert.False(t, IsIdentifier("has space"))
	assert.False(t, IsIdentifier("has-hyphen"))
	assert.False(t, IsIdentifier("émoji"))
}
