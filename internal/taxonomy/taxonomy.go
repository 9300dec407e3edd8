// Package taxonomy loads versioned meso-narrative taxonomies and compares
// observed annotations against them.
package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/oii-seeing-migration/mignar/internal/model"
)

// NewMinCount is how many times an unknown theme/meso pair must be observed
// before it is reported as a candidate new narrative. Singletons are usually
// model noise.
const NewMinCount = 3

var revisionFile = regexp.MustCompile(`^meso_narratives_revision_(\d+)\.ya?ml$`)

// Taxonomy maps a narrative theme to its meso narratives.
type Taxonomy map[string][]string

// ListRevisions returns the revision numbers available in dir, ascending.
func ListRevisions(dir string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy directory: %w", err)
	}

	var revisions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := revisionFile.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		revisions = append(revisions, n)
	}

	sort.Ints(revisions)
	return revisions, nil
}

// LoadRevision loads one taxonomy revision from dir. revision <= 0 selects
// the latest available.
func LoadRevision(dir string, revision int) (Taxonomy, int, error) {
	if revision <= 0 {
		revisions, err := ListRevisions(dir)
		if err != nil {
			return nil, 0, err
		}
		if len(revisions) == 0 {
			return nil, 0, fmt.Errorf("no taxonomy revisions in %s", dir)
		}
		revision = revisions[len(revisions)-1]
	}

	path := filepath.Join(dir, fmt.Sprintf("meso_narratives_revision_%d.yaml", revision))
	data, err := os.ReadFile(path)
	if err != nil {
		alt := filepath.Join(dir, fmt.Sprintf("meso_narratives_revision_%d.yml", revision))
		if altData, altErr := os.ReadFile(alt); altErr == nil {
			data = altData
		} else {
			return nil, 0, fmt.Errorf("read taxonomy revision %d: %w", revision, err)
		}
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, 0, fmt.Errorf("parse taxonomy revision %d: %w", revision, err)
	}
	return tax, revision, nil
}

// Themes returns the taxonomy's themes, sorted.
func (t Taxonomy) Themes() []string {
	themes := make([]string, 0, len(t))
	for theme := range t {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

// HasTheme reports whether the theme exists in the taxonomy.
func (t Taxonomy) HasTheme(theme string) bool {
	_, ok := t[theme]
	return ok
}

// HasMeso reports whether the theme lists the meso narrative.
func (t Taxonomy) HasMeso(theme, meso string) bool {
	for _, m := range t[theme] {
		if m == meso {
			return true
		}
	}
	return false
}

// Observation is one theme/meso pair seen in annotations, with its count.
type Observation struct {
	Theme string
	Meso  string
	Count int
}

// CountObservations tallies theme/meso pairs across annotations. Pairs with
// an empty theme or meso are skipped.
func CountObservations(anns []model.Annotation) []Observation {
	counts := make(map[[2]string]int)
	for _, ann := range anns {
		if ann.Theme == "" || ann.Meso == "" {
			continue
		}
		counts[[2]string{ann.Theme, ann.Meso}]++
	}

	obs := make([]Observation, 0, len(counts))
	for pair, n := range counts {
		obs = append(obs, Observation{Theme: pair[0], Meso: pair[1], Count: n})
	}
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].Count != obs[j].Count {
			return obs[i].Count > obs[j].Count
		}
		if obs[i].Theme != obs[j].Theme {
			return obs[i].Theme < obs[j].Theme
		}
		return obs[i].Meso < obs[j].Meso
	})
	return obs
}

// NewNarratives returns observed theme/meso pairs absent from the taxonomy
// and seen at least NewMinCount times. Most-seen first.
func NewNarratives(t Taxonomy, anns []model.Annotation) []Observation {
	var out []Observation
	for _, obs := range CountObservations(anns) {
		if obs.Count < NewMinCount {
			continue
		}
		if t.HasMeso(obs.Theme, obs.Meso) {
			continue
		}
		out = append(out, obs)
	}
	return out
}
