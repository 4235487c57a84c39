package prompt

import "strings"

// Placeholder syntax is {{ identifier }} where identifier matches
// [A-Za-z_][A-Za-z0-9_]* and whitespace inside the braces is ignored.
// This scanner is the single definition of that grammar; both the
// renderer and the consistency validator go through it.

// placeholderToken is one {{...}} occurrence found in template text.
type placeholderToken struct {
	name  string // identifier inside the braces
	start int    // byte offset of the opening "{{"
	end   int    // byte offset just past the closing "}}"
}

// scanPlaceholders walks content and returns every well-formed
// placeholder occurrence in order. Malformed braces and non-identifier
// contents are ignored.
func scanPlaceholders(content string) []placeholderToken {
	var tokens []placeholderToken
	for i := 0; i+3 < len(content); i++ {
		if content[i] != '{' || content[i+1] != '{' {
			continue
		}
		close := strings.Index(content[i+2:], "}}")
		if close < 0 {
			break
		}
		end := i + 2 + close + 2
		name := strings.TrimSpace(content[i+2 : end-2])
		if isIdentifier(name) {
			tokens = append(tokens, placeholderToken{name: name, start: i, end: end})
			i = end - 1
		}
	}
	return tokens
}

// PlaceholderNames returns the deduped identifiers referenced by
// content, in order of first occurrence.
func PlaceholderNames(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tok := range scanPlaceholders(content) {
		if !seen[tok.name] {
			seen[tok.name] = true
			names = append(names, tok.name)
		}
	}
	return names
}

// IsIdentifier reports whether s is a valid variable name.
func IsIdentifier(s string) bool { return isIdentifier(s) }

// isIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
