// Package llm generates annotation payloads for unannotated documents. The
// generated payloads use the same serialized form as the upstream annotation
// pipeline, so the extractor consumes them unchanged.
package llm

import (
	"context"
	"fmt"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/taxonomy"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Annotate produces an annotation payload for a document body
	Annotate(ctx context.Context, req AnnotateRequest) (*AnnotateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AnnotateRequest contains the input for annotation generation
type AnnotateRequest struct {
	// Body is the document text to annotate
	Body string

	// Taxonomy constrains theme and meso narrative values. The model must
	// pick from it, never invent labels.
	Taxonomy taxonomy.Taxonomy

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AnnotateResponse contains the generated payload
type AnnotateResponse struct {
	// Payload is a serialized JSON list of annotation objects
	Payload string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "gpt-4o-mini",
		Timeout:   30,
		MaxTokens: 1500,
	}
}

// BuildPrompt constructs the annotation prompt. Quoted fragments must be
// verbatim excerpts so downstream location can find them.
func BuildPrompt(body string, tax taxonomy.Taxonomy) string {
	prompt := `You are annotating a news article with migration narratives.

RULES:
1. Quote fragments VERBATIM from the article text. Do not paraphrase, fix
   typos or alter punctuation.
2. Use ONLY themes and meso narratives from the taxonomy below.
3. Return a JSON list of objects with exactly these keys:
   "text fragment", "narrative theme", "meso narrative".
4. Return an empty list [] if no narrative from the taxonomy is expressed.
5. Return ONLY the JSON list, no prose.

Taxonomy:
`
	for _, theme := range tax.Themes() {
		prompt += fmt.Sprintf("- %s:\n", theme)
		for _, meso := range tax[theme] {
			prompt += fmt.Sprintf("  - %s\n", meso)
		}
	}

	prompt += "\nArticle:\n" + body + "\n"
	return prompt
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
	}
}
