// Package extract parses heterogeneous per-model annotation payloads into a
// uniform annotation list.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/oii-seeing-migration/mignar/internal/model"
)

// Payload object keys as produced by the upstream annotation pipeline.
const (
	keyFragment = "text fragment"
	keyTheme    = "narrative theme"
	keyMeso     = "meso narrative"
)

// ConsolidatedModel labels annotations from the consolidated single-field
// schema variant, which carries no per-model key.
const ConsolidatedModel = "consolidated"

// Policy selects which fields a payload object needs before it is emitted as
// an annotation. The two policies correspond to genuinely different data
// contracts from different pipeline versions, so the choice is explicit
// configuration rather than shape-sniffing.
type Policy int

const (
	// PolicyFullLabels requires theme and meso narrative to both be present;
	// the fragment stays optional and its absence is recorded on the
	// annotation. Used for full-metadata highlighting and meso filtering.
	PolicyFullLabels Policy = iota

	// PolicyFragmentOnly requires only a non-empty fragment; theme and meso
	// may be absent.
	PolicyFragmentOnly
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full-labels":
		return PolicyFullLabels, nil
	case "fragment-only":
		return PolicyFragmentOnly, nil
	default:
		return 0, fmt.Errorf("unknown extraction policy: %q (supported: full-labels, fragment-only)", s)
	}
}

// Extractor turns document records into annotations.
type Extractor struct {
	policy Policy
}

// New creates an extractor with the given schema policy.
func New(policy Policy) *Extractor {
	return &Extractor{policy: policy}
}

// Extract collects annotations from every per-model payload field of the
// document and, when present, from the consolidated field. Model fields are
// visited in sorted order so output is deterministic. Malformed payloads
// contribute nothing; they never fail the document.
func (e *Extractor) Extract(doc *model.Document) []model.Annotation {
	var out []model.Annotation

	names := make([]string, 0, len(doc.Payloads))
	for name := range doc.Payloads {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		out = append(out, e.ParsePayload(doc.Payloads[name], name)...)
	}
	if doc.Consolidated != "" {
		out = append(out, e.ParsePayload(doc.Consolidated, ConsolidatedModel)...)
	}
	return out
}

// ParsePayload parses one serialized list of annotation objects attributed to
// modelName. Anything that is not a JSON list yields zero annotations;
// non-object list elements are skipped; a key holding a non-string value is
// ignored for that key only.
func (e *Extractor) ParsePayload(payload, modelName string) []model.Annotation {
	var raw []interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil
	}

	var out []model.Annotation
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		frag := stringField(obj, keyFragment)
		theme := stringField(obj, keyTheme)
		meso := stringField(obj, keyMeso)

		switch e.policy {
		case PolicyFullLabels:
			if theme == "" || meso == "" {
				continue
			}
		case PolicyFragmentOnly:
			if frag == "" {
				continue
			}
		}

		out = append(out, model.Annotation{
			Fragment:    frag,
			Theme:       theme,
			Meso:        meso,
			Model:       modelName,
			HasFragment: frag != "",
		})
	}
	return out
}

// MesoValues returns the sorted set of meso narratives claimed anywhere in
// the document's payloads, regardless of policy. Used for sidebar-style
// filtering by a selected meso narrative.
func MesoValues(doc *model.Document) []string {
	seen := make(map[string]bool)
	collect := func(payload string) {
		var raw []interface{}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return
		}
		for _, item := range raw {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if mn := stringField(obj, keyMeso); mn != "" {
				seen[mn] = true
			}
		}
	}

	for _, payload := range doc.Payloads {
		collect(payload)
	}
	if doc.Consolidated != "" {
		collect(doc.Consolidated)
	}

	out := make([]string, 0, len(seen))
	for mn := range seen {
		out = append(out, mn)
	}
	sort.Strings(out)
	return out
}

// HasMeso reports whether any payload of the document claims the given meso
// narrative.
func HasMeso(doc *model.Document, meso string) bool {
	for _, mn := range MesoValues(doc) {
		if mn == meso {
			return true
		}
	}
	return false
}

// stringField returns the trimmed string value of a key, or "" when the key
// is absent or holds a non-string value.
func stringField(obj map[string]interface{}, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
