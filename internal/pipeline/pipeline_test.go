package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/render"
)

func testDoc() *model.Document {
	body := "Migration rose sharply last year. Analysts say the economy grew strongly. Critics disagree about the causes."

	qwen := `[
		{"text fragment": "the economy grew strongly", "narrative theme": "Economy", "meso narrative": "Migrants boost growth"},
		{"text fragment": "Critics disagree about the causes", "narrative theme": "Politics", "meso narrative": "Contested causes"}
	]`
	llama := `[
		{"text fragment": "Analysts say the economy grew strongly", "narrative theme": "Economy", "meso narrative": "Migrants boost growth"},
		{"narrative theme": "Society", "meso narrative": "Public debate"}
	]`

	return &model.Document{
		Title: "Test article",
		URL:   "https://example.org/a",
		Body:  body,
		Payloads: map[string]string{
			"Qwen3-32B":     qwen,
			"Llama-3.3-70B": llama,
		},
	}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(model.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestProcess_EndToEnd(t *testing.T) {
	p := newTestPipeline(t)
	doc := testDoc()

	result, err := p.Process(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(result.Annotations) != 4 {
		t.Fatalf("expected 4 annotations, got %d", len(result.Annotations))
	}
	// Three annotations carry fragments and all exist verbatim in the body.
	if len(result.Spans) != 3 {
		t.Errorf("expected 3 located spans, got %d", len(result.Spans))
	}
	if len(result.Segments) == 0 {
		t.Fatal("expected merged segments")
	}
	if !strings.Contains(result.HTML, render.ClassHighlight) {
		t.Error("expected highlight markup in HTML")
	}
}

func TestProcess_MetadataRows(t *testing.T) {
	p := newTestPipeline(t)

	result, err := p.Process(context.Background(), testDoc(), "Migrants boost growth")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(result.Metadata) != 4 {
		t.Fatalf("expected 4 metadata rows, got %d", len(result.Metadata))
	}

	var noFragment, located, hits int
	for i, row := range result.Metadata {
		if row.Index != i+1 {
			t.Errorf("row %d: index %d", i, row.Index)
		}
		if !row.FragmentPresent {
			noFragment++
			if row.Fragment != model.NoFragmentMarker {
				t.Errorf("fragmentless row shows %q", row.Fragment)
			}
			if row.Located {
				t.Error("fragmentless row marked located")
			}
		}
		if row.Located {
			located++
			if row.Strategy == "" {
				t.Error("located row missing strategy")
			}
		}
		if row.SelectedMesoHit {
			hits++
		}
	}
	if noFragment != 1 {
		t.Errorf("expected 1 fragmentless row, got %d", noFragment)
	}
	if located != 3 {
		t.Errorf("expected 3 located rows, got %d", located)
	}
	if hits != 2 {
		t.Errorf("expected 2 meso filter hits, got %d", hits)
	}
}

func TestProcess_OverlapMerging(t *testing.T) {
	p := newTestPipeline(t)

	// Qwen's fragment is a suffix of Llama's, so their spans nest. Some
	// segment must carry both labels.
	result, err := p.Process(context.Background(), testDoc(), "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	both := false
	for _, seg := range result.Segments {
		if len(seg.Labels) == 2 {
			both = true
		}
	}
	if !both {
		t.Error("expected a segment carrying labels from both models")
	}
}

func TestProcess_ContentPreserved(t *testing.T) {
	p := newTestPipeline(t)
	doc := testDoc()

	result, err := p.Process(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	text, err := render.PlainText(result.HTML)
	if err != nil {
		t.Fatalf("PlainText: %v", err)
	}
	if text != doc.Body {
		t.Errorf("highlighting altered content:\n got %q\nwant %q", text, doc.Body)
	}
}

func TestProcess_UnlocatableFragment(t *testing.T) {
	p := newTestPipeline(t)
	doc := &model.Document{
		Title: "No match",
		Body:  "Completely unrelated body text about weather patterns.",
		Payloads: map[string]string{
			"Qwen3-32B": `[{"text fragment": "migration policy reforms stalled in parliament", "narrative theme": "Politics", "meso narrative": "Policy gridlock"}]`,
		},
	}

	result, err := p.Process(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(result.Spans) != 0 {
		t.Errorf("expected no spans, got %d", len(result.Spans))
	}
	if len(result.Metadata) != 1 {
		t.Fatalf("expected 1 metadata row, got %d", len(result.Metadata))
	}
	row := result.Metadata[0]
	if row.Located || row.Strategy != "" {
		t.Errorf("unlocatable row: located=%v strategy=%q", row.Located, row.Strategy)
	}
	if !row.FragmentPresent {
		t.Error("fragment_present should be true")
	}
	if result.HTML != "Completely unrelated body text about weather patterns." {
		t.Errorf("body should pass through unchanged, got %q", result.HTML)
	}
}

func TestProcess_NilDocument(t *testing.T) {
	p := newTestPipeline(t)
	if _, err := p.Process(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancellation is only observed while annotations are queued, so a
	// pre-cancelled context may or may not fail depending on scheduling. It
	// must never panic or corrupt results.
	result, err := p.Process(ctx, testDoc(), "")
	if err == nil && result == nil {
		t.Fatal("nil result without error")
	}
}

func TestNew_InvalidPolicy(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Extract.Policy = "nonsense"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestRenderer_WritesOutputs(t *testing.T) {
	p := newTestPipeline(t)
	doc := testDoc()
	result, err := p.Process(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	dir := t.TempDir()
	r := NewRenderer()

	htmlPath := filepath.Join(dir, "out", "page.html")
	if err := r.RenderHTML(result, htmlPath); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	page, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(page), doc.Title) {
		t.Error("page missing title")
	}

	metaPath := filepath.Join(dir, "meta.json")
	if err := r.RenderMetadata(result, metaPath); err != nil {
		t.Fatalf("RenderMetadata: %v", err)
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var rows []model.MetadataRow
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if len(rows) != len(result.Metadata) {
		t.Errorf("expected %d rows, got %d", len(result.Metadata), len(rows))
	}

	textPath := filepath.Join(dir, "body.txt")
	if err := r.RenderText(result, textPath); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	text, err := os.ReadFile(textPath)
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if string(text) != doc.Body {
		t.Error("text output differs from original body")
	}
}
