package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/pipeline"
	"github.com/oii-seeing-migration/mignar/internal/store"
	"github.com/oii-seeing-migration/mignar/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	titlesFile   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Highlight many documents in parallel",
	Long: `Batch runs the highlighting flow over every document passing the
filters, in parallel, and writes an HTML page and metadata table per
document into the output directory.

Example:
  mignar batch --data export.json --output-dir ./pages
  mignar batch --meso "Migrants boost growth" --concurrency 8
  mignar batch --titles titles.txt`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addDataFlags(batchCmd)
	batchCmd.Flags().StringVar(&selectedMeso, "meso", "", "meso narrative to emphasize and filter by")
	batchCmd.Flags().StringVar(&filterTheme, "theme", "", "only documents with this theme")
	batchCmd.Flags().StringVar(&filterSource, "source-table", "", "only documents from this source table")
	batchCmd.Flags().StringVar(&titlesFile, "titles", "", "file of document titles, one per line")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./mignar-out", "output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig()
	cfg.Concurrency.BatchWorkers = concurrency

	docs, err := buildStore(cfg).Load()
	if err != nil {
		return err
	}

	docs = store.Filter{
		SourceTable: filterSource,
		Theme:       filterTheme,
		Meso:        selectedMeso,
	}.Apply(docs)

	if titlesFile != "" {
		titles, err := worker.ReadTitlesFromFile(titlesFile)
		if err != nil {
			return err
		}
		wanted := make(map[string]bool, len(titles))
		for _, t := range titles {
			wanted[t] = true
		}
		var kept []*model.Document
		for _, doc := range docs {
			if wanted[doc.Title] {
				kept = append(kept, doc)
			}
		}
		docs = kept
	}

	if len(docs) == 0 {
		return fmt.Errorf("no documents match the filters")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Processing %d documents with %d workers...\n", len(docs), concurrency)

	processor := worker.NewBatchProcessor(p, concurrency)
	results := processor.ProcessDocuments(ctx, docs, selectedMeso)

	renderer := pipeline.NewRenderer()
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Title, result.Error)
			continue
		}

		slug := sanitizeFilename(result.Title)
		htmlPath := filepath.Join(outputDir, slug+".html")
		metaPath := filepath.Join(outputDir, slug+".meta.json")

		if err := renderer.RenderHTML(result.Result, htmlPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Title, err)
			continue
		}
		if err := renderer.RenderMetadata(result.Result, metaPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Title, err)
			continue
		}

		successCount++
		if verbose {
			fmt.Fprintf(os.Stderr, "OK   %s (%d segments)\n", result.Title, len(result.Result.Segments))
		}
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d ok, %d failed, output in %s\n", successCount, failureCount, outputDir)
	if failureCount > 0 {
		return fmt.Errorf("%d of %d documents failed", failureCount, len(results))
	}
	return nil
}

// sanitizeFilename sanitizes a title for use as a filename
func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		default:
			out = append(out, '_')
		}
	}
	s = string(out)
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "untitled"
	}
	return s
}
