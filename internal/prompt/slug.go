package prompt

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug derives a filesystem-safe slug from a display name: accents are
// stripped via NFD decomposition, everything outside [a-z0-9] becomes
// a hyphen, and runs of hyphens collapse.
func Slug(name string) string {
	decomposed := norm.NFD.String(name)

	var sb strings.Builder
	sb.Grow(len(decomposed))
	lastHyphen := true // suppress leading hyphens
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from decomposition, drop
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
