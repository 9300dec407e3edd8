package model

// AnnotationFieldPrefix marks per-model annotation payload fields in a
// document record (e.g. "annotation_parsed_Qwen3-32B").
const AnnotationFieldPrefix = "annotation_parsed_"

// Document is one record from the document store.
type Document struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Body        string `json:"body"`
	PubDate     string `json:"pub_date,omitempty"`
	SourceTable string `json:"source_table,omitempty"`
	Theme       string `json:"theme,omitempty"` // Document-level theme, when the export carries one

	// Payloads maps a model name to its serialized annotation list, taken
	// from annotation_parsed_<model> fields of the record.
	Payloads map[string]string `json:"payloads,omitempty"`

	// Consolidated holds the single-field annotation payload used by the
	// consolidated schema variant, when present.
	Consolidated string `json:"consolidated,omitempty"`
}
