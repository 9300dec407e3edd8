// Package render produces the highlighted document markup from merged
// segments. It performs no matching of its own and never alters offsets.
package render

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/oii-seeing-migration/mignar/internal/model"
)

// Highlight CSS classes. The selected variant marks segments whose label set
// contains the currently selected meso narrative.
const (
	ClassHighlight = "highlight"
	ClassSelected  = "highlight-selected"
)

// TooltipSeparator joins the per-label tooltip entries.
const TooltipSeparator = " | "

// Highlights walks segments in start order over the original body, emitting
// escaped plain text interleaved with labeled highlight spans. The visible,
// tag-stripped content of the result decodes back to the body exactly.
func Highlights(body string, segments []model.Segment, selectedMeso string) string {
	if len(segments) == 0 {
		return html.EscapeString(body)
	}

	segs := append([]model.Segment(nil), segments...)
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	var b strings.Builder
	last := 0
	for _, seg := range segs {
		if seg.Start < last || seg.Start >= seg.End || seg.End > len(body) {
			continue
		}
		b.WriteString(html.EscapeString(body[last:seg.Start]))

		class := ClassHighlight
		if selectedMeso != "" && hasMeso(seg.Labels, selectedMeso) {
			class = ClassSelected
		}
		fmt.Fprintf(&b, `<span class="%s" title="%s">%s</span>`,
			class,
			html.EscapeString(Tooltip(seg.Labels)),
			html.EscapeString(body[seg.Start:seg.End]))
		last = seg.End
	}
	b.WriteString(html.EscapeString(body[last:]))
	return b.String()
}

// Tooltip renders a segment's labels as one human-readable line, sorted by
// model, then theme, then meso narrative.
func Tooltip(labels []model.Label) string {
	sorted := append([]model.Label(nil), labels...)
	model.SortLabels(sorted)

	names := make([]string, 0, len(sorted))
	for _, l := range sorted {
		names = append(names, fmt.Sprintf("%s — %s — %s", l.Model, l.Theme, l.Meso))
	}
	return strings.Join(names, TooltipSeparator)
}

func hasMeso(labels []model.Label, meso string) bool {
	for _, l := range labels {
		if l.Meso == meso {
			return true
		}
	}
	return false
}
