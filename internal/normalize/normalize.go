// Package normalize canonicalizes document and fragment text before matching.
// It never lowercases; case handling belongs to the comparison sites.
package normalize

import (
	"regexp"
	"strings"
)

// PercentToken stands in for numeric percentage expressions in normalized
// fragments. Models paraphrase "30%" as "30 per cent" and vice versa, so the
// locator expands the token back into a tolerant pattern.
const PercentToken = "<<NUMPCT>>"

// Ellipsis is the canonical three-dot elision marker.
const Ellipsis = "..."

var (
	singleQuotes = regexp.MustCompile("[‘’]")
	doubleQuotes = regexp.MustCompile("[“”]")
	whitespace   = regexp.MustCompile(`\s+`)
	ellipses     = regexp.MustCompile(`\x{2026}|\.{3,}`)
	trailingGap  = regexp.MustCompile(`(?:\.{3,}|\x{2026})\s*$`)
	percents     = regexp.MustCompile(`(?i)\b(\d+)\s*(%|percent\b|per\s*cent\b)`)
)

// Text canonicalizes characters: curly quotes to straight quotes, en/em
// dashes to hyphens, any whitespace run (including newlines) to a single
// space, with leading/trailing whitespace trimmed.
func Text(s string) string {
	s = strings.TrimSpace(s)
	s = singleQuotes.ReplaceAllString(s, "'")
	s = doubleQuotes.ReplaceAllString(s, `"`)
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	return whitespace.ReplaceAllString(s, " ")
}

// Fragment applies Text and then the fragment-specific rules: runs of three or
// more dots and the ellipsis glyph become the canonical marker, a dangling
// trailing marker is stripped (quotes often end with an ellipsis that has no
// continuation in the body), and percentage expressions become PercentToken.
func Fragment(s string) string {
	s = Text(s)
	s = ellipses.ReplaceAllString(s, Ellipsis)
	s = strings.TrimSpace(trailingGap.ReplaceAllString(s, ""))
	return percents.ReplaceAllString(s, PercentToken)
}
