package model

// NoFragmentMarker is shown in the metadata table for annotations that carry
// no quoted fragment.
const NoFragmentMarker = "[no fragment]"

// MetadataRow is one row of the per-document annotation table. Every
// annotation produces a row, whether or not its fragment could be located.
type MetadataRow struct {
	Index           int    `json:"#"`
	SelectedMesoHit bool   `json:"selected_meso_filter"`
	Model           string `json:"model"`
	Theme           string `json:"narrative theme"`
	Meso            string `json:"meso narrative"`
	Fragment        string `json:"text fragment"`
	FragmentPresent bool   `json:"fragment_present"`
	Located         bool   `json:"located"`
	Strategy        string `json:"strategy,omitempty"`
}
