package locate

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ratio computes a sequence-similarity ratio in [0,1]: twice the number of
// matched characters over the combined length of both strings, the same
// measure difflib-style matchers report.
func ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	matched := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			matched += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(matched) / float64(total)
}
