package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oii-seeing-migration/mignar/internal/render"
)

// Renderer writes pipeline results to files and prints run summaries.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderHTML writes a standalone highlighted page for the result.
func (r *Renderer) RenderHTML(result *Result, path string) error {
	caption := captionFor(result)
	page := render.Page(result.Document.Title, result.Document.URL, caption, result.HTML)

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return fmt.Errorf("write HTML: %w", err)
	}
	return nil
}

// RenderMetadata writes the annotation table as indented JSON.
func (r *Renderer) RenderMetadata(result *Result, path string) error {
	data, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// RenderText writes the highlighted body stripped back to plain text. The
// output equals the original body: markup adds emphasis without altering
// content.
func (r *Renderer) RenderText(result *Result, path string) error {
	text, err := render.PlainText(result.HTML)
	if err != nil {
		return fmt.Errorf("strip markup: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// RenderSummary prints a one-document run summary to stdout.
func (r *Renderer) RenderSummary(result *Result) {
	located := 0
	withFragment := 0
	for _, row := range result.Metadata {
		if row.FragmentPresent {
			withFragment++
		}
		if row.Located {
			located++
		}
	}

	fmt.Printf("%s\n", result.Document.Title)
	fmt.Printf("  Annotations: %d (%d with fragment)\n", len(result.Annotations), withFragment)
	fmt.Printf("  Located:     %d/%d\n", located, withFragment)
	fmt.Printf("  Segments:    %d\n", len(result.Segments))
	if result.SelectedMeso != "" {
		hits := 0
		for _, row := range result.Metadata {
			if row.SelectedMesoHit {
				hits++
			}
		}
		fmt.Printf("  Meso filter: %q (%d hits)\n", result.SelectedMeso, hits)
	}
}

func captionFor(result *Result) string {
	doc := result.Document
	caption := ""
	if doc.PubDate != "" {
		caption = doc.PubDate
	}
	if doc.SourceTable != "" {
		if caption != "" {
			caption += " | "
		}
		caption += doc.SourceTable
	}
	return caption
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}
