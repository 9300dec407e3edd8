// Package pipeline orchestrates the per-document flow: extract annotations,
// locate their fragments concurrently, merge overlapping spans and render the
// highlighted body plus the metadata table.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/oii-seeing-migration/mignar/internal/extract"
	"github.com/oii-seeing-migration/mignar/internal/locate"
	"github.com/oii-seeing-migration/mignar/internal/merge"
	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/render"
)

// Result holds everything produced for one document.
type Result struct {
	Document     *model.Document
	Annotations  []model.Annotation
	Spans        []model.LocatedSpan
	Segments     []model.Segment
	HTML         string // Body with highlight markup, not a full page
	Metadata     []model.MetadataRow
	SelectedMeso string
}

// Pipeline processes documents end to end.
type Pipeline struct {
	extractor *extract.Extractor
	locator   *locate.Locator
	workers   int
	verbose   bool
}

// New creates a pipeline from configuration.
func New(cfg *model.Config) (*Pipeline, error) {
	policy, err := extract.ParsePolicy(cfg.Extract.Policy)
	if err != nil {
		return nil, fmt.Errorf("configure extraction: %w", err)
	}

	workers := cfg.Concurrency.LocateWorkers
	if workers <= 0 {
		workers = 8
	}

	return &Pipeline{
		extractor: extract.New(policy),
		locator:   locate.New(),
		workers:   workers,
		verbose:   cfg.Output.Verbose,
	}, nil
}

// Process runs the full flow for one document. selectedMeso may be empty; when
// set it drives the emphasized highlight class and the metadata hit column.
// Annotations that fail to locate still appear in the metadata table.
func (p *Pipeline) Process(ctx context.Context, doc *model.Document, selectedMeso string) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("process: nil document")
	}

	anns := p.extractor.Extract(doc)
	if p.verbose {
		fmt.Fprintf(os.Stderr, "  Extracted %d annotations from %q\n", len(anns), doc.Title)
	}

	located, err := p.locateAll(ctx, doc.Body, anns)
	if err != nil {
		return nil, err
	}

	spans := make([]model.LocatedSpan, 0, len(anns))
	for _, out := range located {
		if out.ok {
			spans = append(spans, out.span)
		}
	}

	segments := merge.Spans(spans)

	return &Result{
		Document:     doc,
		Annotations:  anns,
		Spans:        spans,
		Segments:     segments,
		HTML:         render.Highlights(doc.Body, segments, selectedMeso),
		Metadata:     metadataRows(anns, located, selectedMeso),
		SelectedMeso: selectedMeso,
	}, nil
}

// locateOutcome is the per-annotation location result, indexed like the
// annotation slice.
type locateOutcome struct {
	span     model.LocatedSpan
	strategy locate.Strategy
	ok       bool
}

// locateAll locates every fragment-bearing annotation concurrently. Results
// land in the slot matching the annotation's index, so ordering is stable
// regardless of goroutine scheduling.
func (p *Pipeline) locateAll(ctx context.Context, body string, anns []model.Annotation) ([]locateOutcome, error) {
	outcomes := make([]locateOutcome, len(anns))
	if len(anns) == 0 {
		return outcomes, nil
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.workers)
	var cancelled bool
	var mu sync.Mutex

	for i, ann := range anns {
		if !ann.HasFragment {
			continue
		}

		wg.Add(1)
		go func(idx int, a model.Annotation) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				mu.Lock()
				cancelled = true
				mu.Unlock()
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			span, strategy, ok := p.locator.Locate(body, a)
			outcomes[idx] = locateOutcome{span: span, strategy: strategy, ok: ok}
		}(i, ann)
	}

	wg.Wait()

	if cancelled {
		return nil, ctx.Err()
	}
	return outcomes, nil
}

// metadataRows builds the per-annotation table. Rows are 1-indexed in
// annotation order.
func metadataRows(anns []model.Annotation, located []locateOutcome, selectedMeso string) []model.MetadataRow {
	rows := make([]model.MetadataRow, len(anns))
	for i, ann := range anns {
		fragment := ann.Fragment
		if !ann.HasFragment {
			fragment = model.NoFragmentMarker
		}

		rows[i] = model.MetadataRow{
			Index:           i + 1,
			SelectedMesoHit: selectedMeso != "" && ann.Meso == selectedMeso,
			Model:           ann.Model,
			Theme:           ann.Theme,
			Meso:            ann.Meso,
			Fragment:        fragment,
			FragmentPresent: ann.HasFragment,
			Located:         located[i].ok,
			Strategy:        string(located[i].strategy),
		}
	}
	return rows
}
