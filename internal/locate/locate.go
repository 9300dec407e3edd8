// Package locate finds the best span for an annotation fragment inside a
// document body. Fragments are model-produced quotes and frequently not exact
// substrings, so location runs an ordered cascade of strategies from exact to
// fuzzy; the first success wins and within a strategy the leftmost match wins.
package locate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/normalize"
)

// FuzzyAcceptRatio is the minimum similarity ratio at which the fuzzy anchor
// strategy accepts its best candidate window.
const FuzzyAcceptRatio = 0.80

// MaxGapRunes bounds the elision gap the gapped-regex strategy bridges
// between quoted parts. The bound keeps worst-case matching cost near-linear
// in body length.
const MaxGapRunes = 280

// AnchorRunes is how many leading characters of the normalized fragment seed
// the fuzzy candidate search.
const AnchorRunes = 8

// WindowScale widens the fuzzy comparison window relative to the normalized
// fragment's length.
const WindowScale = 1.4

// Strategy identifies which cascade step located a span.
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyNormalized Strategy = "normalized"
	StrategyRegex      Strategy = "regex"
	StrategyFuzzy      Strategy = "fuzzy"
)

// Locator runs the matching cascade. It is stateless and safe for concurrent
// use across annotations of the same or different documents.
type Locator struct{}

// New creates a locator.
func New() *Locator {
	return &Locator{}
}

// Locate returns the best span for the annotation's fragment together with
// the strategy that found it. ok is false when no strategy succeeds, which is
// an expected outcome rather than an error. Annotations without a fragment
// never match. Offsets are byte offsets into body.
func (l *Locator) Locate(body string, ann model.Annotation) (span model.LocatedSpan, strategy Strategy, ok bool) {
	if !ann.HasFragment || ann.Fragment == "" || body == "" {
		return model.LocatedSpan{}, "", false
	}
	label := ann.Label()

	if s, e, found := directSearch(body, ann.Fragment); found {
		return model.LocatedSpan{Start: s, End: e, Label: label}, StrategyExact, true
	}

	nf := normalize.Fragment(ann.Fragment)
	if nf == "" {
		return model.LocatedSpan{}, "", false
	}

	if s, e, found := directSearch(body, nf); found {
		return model.LocatedSpan{Start: s, End: e, Label: label}, StrategyNormalized, true
	}

	if re := gapRegexp(nf); re != nil {
		if loc := re.FindStringIndex(body); loc != nil && loc[0] < loc[1] {
			return model.LocatedSpan{Start: loc[0], End: loc[1], Label: label}, StrategyRegex, true
		}
	}

	if s, e, found := fuzzySearch(body, nf); found {
		return model.LocatedSpan{Start: s, End: e, Label: label}, StrategyFuzzy, true
	}

	return model.LocatedSpan{}, "", false
}

// directSearch finds frag as a literal substring of body, case-sensitively
// first and case-insensitively second. Leftmost occurrence wins. The
// case-insensitive pass indexes a lowercased copy; a bounds guard rejects the
// rare span where Unicode case folding shifted byte lengths.
func directSearch(body, frag string) (int, int, bool) {
	if frag == "" {
		return 0, 0, false
	}
	if i := strings.Index(body, frag); i >= 0 {
		return i, i + len(frag), true
	}
	lb := strings.ToLower(body)
	lf := strings.ToLower(frag)
	if i := strings.Index(lb, lf); i >= 0 && i+len(frag) <= len(body) {
		return i, i + len(frag), true
	}
	return 0, 0, false
}

var wsRun = regexp.MustCompile(`\s+`)

// punctClass tolerates minor punctuation drift at word boundaries: wherever
// the fragment has whitespace, the body may have whitespace, commas,
// semicolons, colons, dashes or hyphens.
const punctClass = `[\s,;:\x{2013}\x{2014}-]+`

// pctPattern matches the percentage expressions PercentToken stands for.
const pctPattern = `(?:\d+\s*(?:%|percent|per\s*cent))`

// gapRegexp builds the gapped pattern for a normalized fragment: literal
// parts split on the ellipsis marker, joined by a bounded non-greedy gap,
// punctuation-tolerant at whitespace and percent placeholders expanded.
// Returns nil when no usable pattern can be built; the caller falls through
// to the fuzzy strategy.
func gapRegexp(nf string) *regexp.Regexp {
	var parts []string
	for _, p := range strings.Split(nf, normalize.Ellipsis) {
		p = normalize.Text(p)
		if p == "" {
			continue
		}
		ep := regexp.QuoteMeta(p)
		ep = wsRun.ReplaceAllLiteralString(ep, punctClass)
		ep = strings.ReplaceAll(ep, regexp.QuoteMeta(normalize.PercentToken), pctPattern)
		parts = append(parts, ep)
	}
	if len(parts) == 0 {
		return nil
	}

	gap := fmt.Sprintf(`.{0,%d}?`, MaxGapRunes)
	re, err := regexp.Compile("(?is)" + strings.Join(parts, gap))
	if err != nil {
		return nil
	}
	return re
}

var leadingJunk = regexp.MustCompile(`^[^A-Za-z0-9]+`)

// fuzzySearch anchors on the first few characters of the normalized fragment,
// then scores every candidate window with a similarity ratio. The anchor
// restriction keeps the candidate set small. Accepts the best candidate only
// at FuzzyAcceptRatio or above.
func fuzzySearch(body, nf string) (int, int, bool) {
	anchor := leadingJunk.ReplaceAllString(nf, "")
	if r := []rune(anchor); len(r) > AnchorRunes {
		anchor = string(r[:AnchorRunes])
	}
	anchor = strings.ToLower(anchor)
	if anchor == "" {
		return 0, 0, false
	}

	lb := strings.ToLower(body)
	target := wsRun.ReplaceAllString(strings.ToLower(nf), " ")

	bestRatio := 0.0
	bestStart := -1
	for from := 0; from <= len(lb)-len(anchor); {
		i := strings.Index(lb[from:], anchor)
		if i < 0 {
			break
		}
		pos := from + i
		from = pos + 1
		if pos >= len(body) {
			break
		}

		wend := pos + int(float64(len(nf))*WindowScale)
		if wend > len(body) {
			wend = len(body)
		}
		window := wsRun.ReplaceAllString(strings.ToLower(body[pos:wend]), " ")
		if len(window) > len(target) {
			window = window[:len(target)]
		}

		if r := ratio(target, window); bestStart < 0 || r > bestRatio {
			bestRatio = r
			bestStart = pos
		}
	}

	if bestStart < 0 || bestRatio < FuzzyAcceptRatio {
		return 0, 0, false
	}
	end := bestStart + len(nf)
	if end > len(body) {
		end = len(body)
	}
	if end <= bestStart {
		return 0, 0, false
	}
	return bestStart, end, true
}
