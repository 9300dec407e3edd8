package model

import "sort"

// Annotation represents one narrative assertion a model made about a document:
// a quoted fragment of the body is claimed to express a theme and a meso narrative.
type Annotation struct {
	Fragment    string `json:"fragment,omitempty"` // Quoted excerpt, may be empty
	Theme       string `json:"theme,omitempty"`    // Narrative theme
	Meso        string `json:"meso,omitempty"`     // Meso narrative (most granular taxonomy level)
	Model       string `json:"model"`              // Producing model name
	HasFragment bool   `json:"has_fragment"`       // False means display-only metadata, never located
}

// Label identifies the claim behind a located span. Segments key their label
// sets by the full triple so distinctly-labeled overlapping claims from
// different models stay separate instead of collapsing.
type Label struct {
	Model string `json:"model"`
	Theme string `json:"theme"`
	Meso  string `json:"meso"`
}

// Label returns the annotation's label triple.
func (a Annotation) Label() Label {
	return Label{Model: a.Model, Theme: a.Theme, Meso: a.Meso}
}

// LocatedSpan is the best-effort position of one annotation's fragment.
// Start and End are half-open byte offsets into the original, unnormalized
// document body; 0 <= Start < End <= len(body).
type LocatedSpan struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Label Label `json:"label"`
}

// Segment is a maximal run of the body covered by a constant, non-empty label
// set after merging. Labels are kept in SortLabels order.
type Segment struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Labels []Label `json:"labels"`
}

// SortLabels orders labels by model, then theme, then meso narrative. This is
// the display order used for tooltips and the canonical order inside segments.
func SortLabels(labels []Label) {
	sort.Slice(labels, func(i, j int) bool {
		a, b := labels[i], labels[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Theme != b.Theme {
			return a.Theme < b.Theme
		}
		return a.Meso < b.Meso
	})
}
