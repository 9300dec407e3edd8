package llm

import (
	"context"
	"fmt"

	"github.com/oii-seeing-migration/mignar/internal/extract"
	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/taxonomy"
	"github.com/oii-seeing-migration/mignar/internal/worker"
)

// Annotator generates annotations for documents, rate-limited per provider.
type Annotator struct {
	provider  Provider
	limiter   *worker.Limiter
	extractor *extract.Extractor
}

// NewAnnotator creates an annotator.
func NewAnnotator(provider Provider, limiter *worker.Limiter, extractor *extract.Extractor) *Annotator {
	return &Annotator{
		provider:  provider,
		limiter:   limiter,
		extractor: extractor,
	}
}

// Annotate generates a payload for the document, stores it under the model's
// name and returns the parsed annotations.
func (a *Annotator) Annotate(ctx context.Context, doc *model.Document, tax taxonomy.Taxonomy) ([]model.Annotation, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, a.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := a.provider.Annotate(ctx, AnnotateRequest{
		Body:     doc.Body,
		Taxonomy: tax,
	})
	if err != nil {
		return nil, fmt.Errorf("annotate %q: %w", doc.Title, err)
	}

	if doc.Payloads == nil {
		doc.Payloads = make(map[string]string)
	}
	doc.Payloads[resp.Model] = resp.Payload

	return a.extractor.ParsePayload(resp.Payload, resp.Model), nil
}
