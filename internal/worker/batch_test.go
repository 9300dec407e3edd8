package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/pipeline"
)

// fakeProcessor implements Processor
type fakeProcessor struct {
	failTitle string
}

func (f *fakeProcessor) Process(ctx context.Context, doc *model.Document, selectedMeso string) (*pipeline.Result, error) {
	if doc.Title == f.failTitle {
		return nil, fmt.Errorf("synthetic failure")
	}
	return &pipeline.Result{Document: doc, SelectedMeso: selectedMeso}, nil
}

func TestBatchProcessor_ProcessDocuments(t *testing.T) {
	docs := []*model.Document{
		{Title: "a", Body: "body a"},
		{Title: "b", Body: "body b"},
		{Title: "c", Body: "body c"},
	}

	bp := NewBatchProcessor(&fakeProcessor{}, 2)
	results := bp.ProcessDocuments(context.Background(), docs, "some meso")

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	seen := make(map[string]bool)
	for _, r := range results {
		if r.GetError() != nil {
			t.Errorf("%s: unexpected error: %v", r.Title, r.GetError())
		}
		if r.Result == nil || r.Result.SelectedMeso != "some meso" {
			t.Errorf("%s: meso filter not threaded through", r.Title)
		}
		seen[r.Title] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all titles represented, got %v", seen)
	}
}

func TestBatchProcessor_PartialFailure(t *testing.T) {
	docs := []*model.Document{
		{Title: "good", Body: "x"},
		{Title: "bad", Body: "y"},
	}

	bp := NewBatchProcessor(&fakeProcessor{failTitle: "bad"}, 2)
	results := bp.ProcessDocuments(context.Background(), docs, "")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	var failed *DocumentResult
	for _, r := range results {
		if r.GetError() != nil {
			failed = r
		}
	}
	if failed == nil {
		t.Fatal("expected one failed result")
	}
	if failed.Title != "bad" {
		t.Errorf("wrong document failed: %s", failed.Title)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	bp := NewBatchProcessor(&fakeProcessor{}, 2)
	results := bp.ProcessDocuments(context.Background(), nil, "")
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadTitlesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.txt")
	content := "First article\n\n# comment\nSecond article\nFirst article\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	titles, err := ReadTitlesFromFile(path)
	if err != nil {
		t.Fatalf("ReadTitlesFromFile: %v", err)
	}

	want := []string{"First article", "Second article"}
	if len(titles) != len(want) {
		t.Fatalf("expected %d titles, got %d: %v", len(want), len(titles), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("title %d: got %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestReadTitlesFromFile_Missing(t *testing.T) {
	if _, err := ReadTitlesFromFile("/nonexistent/titles.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
