package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oii-seeing-migration/mignar/internal/extract"
	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/taxonomy"
)

var showNew bool

// taxonomyCmd represents the taxonomy command
var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect taxonomy revisions and candidate new narratives",
	Long: `Taxonomy lists the revisions available in the taxonomy directory and
prints the themes and meso narratives of one revision.

With --new it also scans the document export for theme/meso pairs the
models assert often enough but the taxonomy does not list.

Example:
  mignar taxonomy
  mignar taxonomy --taxonomy-revision 2
  mignar taxonomy --new --data export.json`,
	RunE: runTaxonomy,
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)

	addDataFlags(taxonomyCmd)
	taxonomyCmd.Flags().StringVar(&taxonomyDir, "taxonomy-dir", "", "taxonomy directory")
	taxonomyCmd.Flags().IntVar(&taxonomyRev, "taxonomy-revision", 0, "taxonomy revision (0 = latest)")
	taxonomyCmd.Flags().BoolVar(&showNew, "new", false, "report observed narratives missing from the taxonomy")
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	if taxonomyDir != "" {
		cfg.Data.TaxonomyDir = taxonomyDir
	}

	revisions, err := taxonomy.ListRevisions(cfg.Data.TaxonomyDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Revisions: %v\n", revisions)

	tax, rev, err := taxonomy.LoadRevision(cfg.Data.TaxonomyDir, taxonomyRev)
	if err != nil {
		return err
	}

	fmt.Printf("Revision %d\n", rev)
	for _, theme := range tax.Themes() {
		fmt.Printf("%s\n", theme)
		for _, meso := range tax[theme] {
			fmt.Printf("  - %s\n", meso)
		}
	}

	if !showNew {
		return nil
	}

	docs, err := buildStore(cfg).Load()
	if err != nil {
		return err
	}

	extractPolicy, err := extract.ParsePolicy(cfg.Extract.Policy)
	if err != nil {
		return err
	}
	extractor := extract.New(extractPolicy)

	var anns []model.Annotation
	for _, doc := range docs {
		anns = append(anns, extractor.Extract(doc)...)
	}

	candidates := taxonomy.NewNarratives(tax, anns)
	fmt.Printf("\nCandidate new narratives (seen %d+ times):\n", taxonomy.NewMinCount)
	if len(candidates) == 0 {
		fmt.Println("  none")
		return nil
	}
	for _, obs := range candidates {
		fmt.Printf("  %4d  %s / %s\n", obs.Count, obs.Theme, obs.Meso)
	}
	return nil
}
