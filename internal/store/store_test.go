package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

const arrayExport = `[
	{
		"title": "First",
		"url": "https://example.org/1",
		"body": "Body one.",
		"pub_date": "2024-01-01",
		"source_table": "news",
		"theme": "Economy",
		"annotation_parsed_Qwen3-32B": "[{\"text fragment\": \"Body one\", \"narrative theme\": \"Economy\", \"meso narrative\": \"Growth\"}]"
	},
	{
		"title": "Second",
		"body": "Body two.",
		"source_table": "blogs",
		"dominant_theme": "Society",
		"annotation_parsed_Llama-3.3-70B": [{"text fragment": "Body two", "narrative theme": "Society", "meso narrative": "Debate"}]
	}
]`

func TestLoad_ArrayExport(t *testing.T) {
	path := writeExport(t, "docs.json", arrayExport)
	s := New(path, "v1", "", 0)

	docs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	first := docs[0]
	if first.Title != "First" || first.Body != "Body one." || first.Theme != "Economy" {
		t.Errorf("first document mismatch: %+v", first)
	}
	if _, ok := first.Payloads["Qwen3-32B"]; !ok {
		t.Error("expected Qwen payload on first document")
	}

	// Fallback theme field and non-string payload both handled
	second := docs[1]
	if second.Theme != "Society" {
		t.Errorf("expected dominant_theme fallback, got %q", second.Theme)
	}
	payload, ok := second.Payloads["Llama-3.3-70B"]
	if !ok {
		t.Fatal("expected Llama payload on second document")
	}
	if payload == "" || payload[0] != '[' {
		t.Errorf("array payload not reserialized: %q", payload)
	}
}

func TestLoad_NDJSONExport(t *testing.T) {
	ndjson := `{"title": "A", "body": "aa", "annotations": "[{\"text fragment\": \"aa\"}]"}
{"title": "B", "body": "bb"}
`
	path := writeExport(t, "docs.ndjson", ndjson)
	s := New(path, "v1", "annotations", 0)

	docs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Consolidated == "" {
		t.Error("expected consolidated payload on first document")
	}
	if docs[1].Consolidated != "" {
		t.Error("expected no consolidated payload on second document")
	}
}

func TestLoad_CacheHitUntilInvalidate(t *testing.T) {
	path := writeExport(t, "docs.json", `[{"title": "A", "body": "aa"}]`)
	s := New(path, "v1", "", time.Minute)

	docs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	// Rewrite the export; the cached copy must still be served
	if err := os.WriteFile(path, []byte(`[{"title": "B", "body": "bb"}]`), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	docs, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if docs[0].Title != "A" {
		t.Errorf("expected cached document, got %q", docs[0].Title)
	}

	s.Invalidate()
	docs, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if docs[0].Title != "B" {
		t.Errorf("expected fresh document after invalidate, got %q", docs[0].Title)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := New("/nonexistent/docs.json", "v1", "", 0).Load(); err == nil {
		t.Error("expected error for missing file")
	}

	empty := writeExport(t, "empty.json", "  \n")
	if _, err := New(empty, "v1", "", 0).Load(); err == nil {
		t.Error("expected error for empty export")
	}

	bad := writeExport(t, "bad.json", "{not json")
	if _, err := New(bad, "v1", "", 0).Load(); err == nil {
		t.Error("expected error for malformed export")
	}
}

func TestByTitle(t *testing.T) {
	path := writeExport(t, "docs.json", arrayExport)
	s := New(path, "v1", "", 0)

	doc, err := s.ByTitle("Second")
	if err != nil {
		t.Fatalf("ByTitle: %v", err)
	}
	if doc.Body != "Body two." {
		t.Errorf("wrong document: %+v", doc)
	}

	if _, err := s.ByTitle("Missing"); err == nil {
		t.Error("expected error for unknown title")
	}
}

func TestKey_RevisionSeparatesEntries(t *testing.T) {
	if Key("/a", "v1") == Key("/a", "v2") {
		t.Error("revisions must produce distinct keys")
	}
	if Key("/a", "v1") == Key("/b", "v1") {
		t.Error("paths must produce distinct keys")
	}
	if Key("/a", "v1") != Key("/a", "v1") {
		t.Error("key must be deterministic")
	}
}

func TestFilter_Apply(t *testing.T) {
	path := writeExport(t, "docs.json", arrayExport)
	docs, err := New(path, "v1", "", 0).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := (Filter{SourceTable: "news"}).Apply(docs); len(got) != 1 || got[0].Title != "First" {
		t.Errorf("source table filter: %v", got)
	}
	if got := (Filter{Theme: "Society"}).Apply(docs); len(got) != 1 || got[0].Title != "Second" {
		t.Errorf("theme filter: %v", got)
	}
	if got := (Filter{Meso: "Growth"}).Apply(docs); len(got) != 1 || got[0].Title != "First" {
		t.Errorf("meso filter: %v", got)
	}
	if got := (Filter{}).Apply(docs); len(got) != 2 {
		t.Errorf("empty filter should pass all, got %d", len(got))
	}
	if got := (Filter{Theme: "Nope"}).Apply(docs); len(got) != 0 {
		t.Errorf("non-matching filter should pass none, got %d", len(got))
	}
}
