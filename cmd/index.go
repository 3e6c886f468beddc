package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/recommend"
)

var flagIndexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Train embeddings and build the similarity index",
	Long: `Train ingredient embeddings on the catalog and build the recipe index
under ~/.vavi/models/. Other commands do this on demand; run it ahead of time
to avoid the delay on first use, or with --force to discard the cache.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Discard cached artifacts and rebuild")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := interruptContext()
	defer cancel()

	start := time.Now()
	a, err := recommend.Prepare(ctx, cfg, flagIndexForce, log)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	printSection("vavi index")
	embDir := filepath.Join(a.ModelDir, recommend.EmbeddingsDir)
	if a.CachedSpace {
		printSkip("embeddings", fmt.Sprintf("up to date: %s", embDir))
	} else {
		printOK("embeddings", fmt.Sprintf("trained %d ingredients (dim %d): %s", a.Space.Len(), a.Space.Dim(), embDir))
	}
	idxDir := filepath.Join(a.ModelDir, recommend.IndexDir)
	if a.CachedIndex {
		printSkip("index", fmt.Sprintf("up to date: %s", idxDir))
	} else {
		printOK("index", fmt.Sprintf("indexed %d recipes: %s", a.Index.Len(), idxDir))
	}
	printInfo("", fmt.Sprintf("done in %s", time.Since(start).Round(time.Millisecond)))
	return nil
}
