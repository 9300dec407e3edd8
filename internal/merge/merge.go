// Package merge composes located spans into a minimal ordered list of
// non-overlapping segments, each carrying the set of labels active over it.
package merge

import (
	"sort"

	"github.com/oii-seeing-migration/mignar/internal/model"
)

type event struct {
	pos   int
	delta int
	label model.Label
}

// Spans runs a sweep line over the span boundaries. Output is deterministic
// and depends only on the multiset of input spans, never their order.
// Degenerate spans (start >= end) are ignored.
func Spans(spans []model.LocatedSpan) []model.Segment {
	events := make([]event, 0, len(spans)*2)
	for _, s := range spans {
		if s.Start >= s.End {
			continue
		}
		events = append(events, event{pos: s.Start, delta: +1, label: s.Label})
		events = append(events, event{pos: s.End, delta: -1, label: s.Label})
	}
	if len(events) == 0 {
		return nil
	}

	// Starts sort before ends at the same position, so a span ending exactly
	// where another begins never opens a zero-width gap between them.
	sort.Slice(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		return events[i].delta > events[j].delta
	})

	active := make(map[model.Label]int)
	var segs []model.Segment
	last := -1

	for _, ev := range events {
		if last >= 0 && ev.pos > last && len(active) > 0 {
			segs = append(segs, model.Segment{
				Start:  last,
				End:    ev.pos,
				Labels: activeLabels(active),
			})
		}
		if ev.delta > 0 {
			active[ev.label]++
		} else if n, ok := active[ev.label]; ok {
			if n <= 1 {
				delete(active, ev.label)
			} else {
				active[ev.label] = n - 1
			}
		}
		last = ev.pos
	}

	return coalesce(segs)
}

// activeLabels snapshots the current label set in canonical order.
func activeLabels(active map[model.Label]int) []model.Label {
	labels := make([]model.Label, 0, len(active))
	for l := range active {
		labels = append(labels, l)
	}
	model.SortLabels(labels)
	return labels
}

// coalesce fuses touching neighbors with identical label sets, keeping
// segments maximal. Nested spans with the same label would otherwise split
// one covered run at every interior boundary.
func coalesce(segs []model.Segment) []model.Segment {
	if len(segs) == 0 {
		return nil
	}
	out := segs[:1]
	for _, s := range segs[1:] {
		prev := &out[len(out)-1]
		if prev.End == s.Start && equalLabels(prev.Labels, s.Labels) {
			prev.End = s.End
			continue
		}
		out = append(out, s)
	}
	return out
}

func equalLabels(a, b []model.Label) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
