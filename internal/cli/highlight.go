package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/pipeline"
	"github.com/oii-seeing-migration/mignar/internal/store"
)

var (
	dataPath       string
	schemaRevision string
	policy         string
	selectedMeso   string
	filterTheme    string
	filterSource   string
	outHTML        string
	outMeta        string
	outText        string
	noCache        bool
	locateWorkers  int
)

// highlightCmd represents the highlight command
var highlightCmd = &cobra.Command{
	Use:   "highlight <title>",
	Short: "Highlight narrative fragments in one annotated article",
	Long: `Highlight locates every annotated fragment in the article body, merges
overlapping claims and writes a highlighted HTML page plus an optional
metadata table.

Example:
  mignar highlight "Some article title"
  mignar highlight "Some article title" --meso "Migrants boost growth" --html out.html
  mignar highlight "Some article title" --meta rows.json --text body.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runHighlight,
}

func init() {
	rootCmd.AddCommand(highlightCmd)

	addDataFlags(highlightCmd)
	highlightCmd.Flags().StringVar(&selectedMeso, "meso", "", "meso narrative to emphasize")
	highlightCmd.Flags().StringVar(&outHTML, "html", "highlight.html", "output HTML path")
	highlightCmd.Flags().StringVar(&outMeta, "meta", "", "output metadata JSON path (optional)")
	highlightCmd.Flags().StringVar(&outText, "text", "", "output plain text path (optional)")
	highlightCmd.Flags().IntVar(&locateWorkers, "workers", 0, "parallel fragment locations (0 = default)")
}

// addDataFlags registers the flags shared by every data-reading command.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataPath, "data", "", "document export path (JSON or NDJSON)")
	cmd.Flags().StringVar(&schemaRevision, "schema-revision", "", "annotation schema revision (cache key component)")
	cmd.Flags().StringVar(&policy, "policy", "", "extraction policy: full-labels or fragment-only")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable document cache")
}

// buildConfig merges defaults with flag overrides.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if schemaRevision != "" {
		cfg.Data.SchemaRevision = schemaRevision
	}
	if policy != "" {
		cfg.Extract.Policy = policy
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if locateWorkers > 0 {
		cfg.Concurrency.LocateWorkers = locateWorkers
	}
	cfg.Output.Verbose = verbose
	return cfg
}

// buildStore creates a document store from configuration.
func buildStore(cfg *model.Config) *store.Store {
	ttl := cfg.Cache.TTL
	if !cfg.Cache.Enabled {
		ttl = 0
	}
	return store.New(cfg.Data.Path, cfg.Data.SchemaRevision, cfg.Data.ConsolidatedField, ttl)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	title := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg := buildConfig()

	if verbose {
		fmt.Fprintf(os.Stderr, "Export: %s\n", cfg.Data.Path)
		fmt.Fprintf(os.Stderr, "Title:  %s\n", title)
		if selectedMeso != "" {
			fmt.Fprintf(os.Stderr, "Meso:   %s\n", selectedMeso)
		}
	}

	doc, err := buildStore(cfg).ByTitle(title)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	result, err := p.Process(ctx, doc, selectedMeso)
	if err != nil {
		return fmt.Errorf("highlight failed: %w", err)
	}

	renderer := pipeline.NewRenderer()
	if outHTML != "" {
		if err := renderer.RenderHTML(result, outHTML); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote HTML: %s\n", outHTML)
		}
	}
	if outMeta != "" {
		if err := renderer.RenderMetadata(result, outMeta); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote metadata: %s\n", outMeta)
		}
	}
	if outText != "" {
		if err := renderer.RenderText(result, outText); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote text: %s\n", outText)
		}
	}

	renderer.RenderSummary(result)
	return nil
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in the export",
	Long: `List prints the titles of all documents in the export, optionally
narrowed by source table, document theme or mentioned meso narrative.

Example:
  mignar list --data export.json
  mignar list --theme Economy --meso "Migrants boost growth"`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	addDataFlags(listCmd)
	listCmd.Flags().StringVar(&filterTheme, "theme", "", "only documents with this theme")
	listCmd.Flags().StringVar(&filterSource, "source-table", "", "only documents from this source table")
	listCmd.Flags().StringVar(&selectedMeso, "meso", "", "only documents mentioning this meso narrative")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()

	docs, err := buildStore(cfg).Load()
	if err != nil {
		return err
	}

	filtered := store.Filter{
		SourceTable: filterSource,
		Theme:       filterTheme,
		Meso:        selectedMeso,
	}.Apply(docs)

	for _, doc := range filtered {
		fmt.Println(doc.Title)
	}
	fmt.Fprintf(os.Stderr, "%d/%d documents\n", len(filtered), len(docs))
	return nil
}
