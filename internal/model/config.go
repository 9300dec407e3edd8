package model

import "time"

// Config is the complete mignar configuration
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Extract     ExtractConfig     `yaml:"extract"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	LLM         LLMConfig         `yaml:"llm"`
	Output      OutputConfig      `yaml:"output"`
}

// DataConfig locates the document export and taxonomy files
type DataConfig struct {
	Path              string `yaml:"path"`               // JSON/NDJSON document export
	TaxonomyDir       string `yaml:"taxonomy_dir"`       // Directory of meso_narratives_revision_N.yaml files
	SchemaRevision    string `yaml:"schema_revision"`    // Annotation schema revision, part of the cache key
	ConsolidatedField string `yaml:"consolidated_field"` // Field name of the single-field schema variant
}

// ExtractConfig selects the annotation schema policy
type ExtractConfig struct {
	Policy string `yaml:"policy"` // "full-labels" or "fragment-only"
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	LocateWorkers int `yaml:"locate_workers"` // Parallel span locations per document
	BatchWorkers  int `yaml:"batch_workers"`  // Parallel documents in batch mode
}

// CacheConfig controls the document store cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// LLMConfig configures optional annotation generation
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // "openai" or "" (disabled)
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"-"` // From environment, never persisted
	BaseURL           string  `yaml:"base_url"`
	Timeout           int     `yaml:"timeout"` // Seconds per API request
	MaxTokens         int     `yaml:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls rendered output
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:              "./data/meso_samples.json",
			TaxonomyDir:       "./taxonomy",
			SchemaRevision:    "v1",
			ConsolidatedField: "annotations",
		},
		Extract: ExtractConfig{
			Policy: "full-labels",
		},
		Concurrency: ConcurrencyConfig{
			LocateWorkers: 8,
			BatchWorkers:  4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		LLM: LLMConfig{
			Provider:          "",
			Model:             "gpt-4o-mini",
			Timeout:           30,
			MaxTokens:         1500,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Output: OutputConfig{
			Dir: "./mignar-out",
		},
	}
}
