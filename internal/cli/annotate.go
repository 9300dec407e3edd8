package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oii-seeing-migration/mignar/internal/extract"
	"github.com/oii-seeing-migration/mignar/internal/llm"
	"github.com/oii-seeing-migration/mignar/internal/pipeline"
	"github.com/oii-seeing-migration/mignar/internal/taxonomy"
	"github.com/oii-seeing-migration/mignar/internal/worker"
)

var (
	llmProvider     string
	llmModel        string
	taxonomyDir     string
	taxonomyRev     int
	annotateTimeout time.Duration
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <title>",
	Short: "Generate annotations for a document with an LLM",
	Long: `Annotate sends the document body to an LLM constrained to the taxonomy,
stores the generated payload on the document and immediately runs the
highlighting flow over it.

Requires OPENAI_API_KEY in the environment.

Example:
  mignar annotate "Some article title"
  mignar annotate "Some article title" --llm-model gpt-4o --taxonomy-revision 3`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	addDataFlags(annotateCmd)
	annotateCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider")
	annotateCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default from config)")
	annotateCmd.Flags().StringVar(&taxonomyDir, "taxonomy-dir", "", "taxonomy directory")
	annotateCmd.Flags().IntVar(&taxonomyRev, "taxonomy-revision", 0, "taxonomy revision (0 = latest)")
	annotateCmd.Flags().StringVar(&outHTML, "html", "highlight.html", "output HTML path")
	annotateCmd.Flags().DurationVar(&annotateTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	title := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), annotateTimeout)
	defer cancel()

	cfg := buildConfig()
	cfg.LLM.Provider = llmProvider
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if taxonomyDir != "" {
		cfg.Data.TaxonomyDir = taxonomyDir
	}

	// Get API key from environment
	if cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("no LLM provider configured")
	}

	tax, rev, err := taxonomy.LoadRevision(cfg.Data.TaxonomyDir, taxonomyRev)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Taxonomy revision %d: %d themes\n", rev, len(tax))
	}

	doc, err := buildStore(cfg).ByTitle(title)
	if err != nil {
		return err
	}

	extractPolicy, err := extract.ParsePolicy(cfg.Extract.Policy)
	if err != nil {
		return err
	}
	limiter := worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)
	annotator := llm.NewAnnotator(provider, limiter, extract.New(extractPolicy))

	anns, err := annotator.Annotate(ctx, doc, tax)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Generated %d annotations\n", len(anns))

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	result, err := p.Process(ctx, doc, "")
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer()
	if outHTML != "" {
		if err := renderer.RenderHTML(result, outHTML); err != nil {
			return err
		}
	}
	renderer.RenderSummary(result)
	return nil
}
