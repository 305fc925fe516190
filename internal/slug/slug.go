// Package slug turns titles into URL slugs and allocates unique slugs and case IDs.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StoryMaxLen caps story slugs. Product slugs are uncapped.
const StoryMaxLen = 50

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
)

// Make derives a slug from title. Accents are folded to their base letters, anything
// outside [a-z0-9] becomes a separator or is dropped, and the result is cut to maxLen
// runes when maxLen is positive. Make is deterministic and may return "".
func Make(title string, maxLen int) string {
	s := strings.ToLower(fold(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if maxLen > 0 && len(s) > maxLen {
		// s is ASCII at this point, so bytes are runes.
		s = strings.TrimRight(s[:maxLen], "-")
	}
	return s
}

// fold decomposes compatibility characters and removes combining marks ("é" -> "e").
// Transformers carry state, so a new chain is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
