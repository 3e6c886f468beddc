package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/config"
	"github.com/vavi-recipes/vavi/internal/embeddings"
	"github.com/vavi-recipes/vavi/internal/recommend"
	"github.com/vavi-recipes/vavi/internal/search/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that vavi's configuration, catalog and cached artifacts are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// maxListedImages caps how many missing image names doctor prints.
const maxListedImages = 10

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("vavi doctor")
	fmt.Println()

	// ── Check 1: config file ──────────────────────────────────────────────────
	fmt.Println("[ vavi.yaml ]")
	cfgPath, err := config.ConfigPath()
	if err != nil {
		failD("cannot determine home directory: %v", err)
	} else if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", "~/.vavi/vavi.yaml not found, using defaults (run 'vavi init' to create it)")
	} else {
		printOK("", fmt.Sprintf("found: %s", cfgPath))
	}
	cfg, loadErr := config.LoadOrDefault()
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
	} else if err := cfg.Validate(); err != nil {
		failD("invalid config: %v", err)
		loadErr = err
	} else {
		printOK("", fmt.Sprintf("model_dir: %s", cfg.ModelDir))
		e := cfg.Embedding
		printOK("", fmt.Sprintf("embedding: %s, dim %d, window %d, seed %d", e.Architecture, e.Dim, e.Window, e.Seed))
	}
	fmt.Println()

	// ── Check 2: catalog ──────────────────────────────────────────────────────
	fmt.Println("[ Catalog ]")
	var cat *catalog.Catalog
	if loadErr == nil {
		cat, err = recommend.LoadCatalog(cfg)
		if err != nil {
			failD("cannot load catalog: %v", err)
		} else {
			source := "built-in"
			if cfg.CatalogPath != "" {
				source = cfg.CatalogPath
			}
			printOK("", fmt.Sprintf("%d recipes in %d cuisines (%s)", cat.Len(), len(cat.Cuisines()), source))
		}
	} else {
		printWarn("", "skipped (config not loaded)")
	}
	fmt.Println()

	// ── Check 3: cached artifacts ─────────────────────────────────────────────
	fmt.Println("[ Artifacts ]")
	if cat != nil {
		for _, line := range checkArtifacts(cfg, cat) {
			if line.ok {
				printOK(line.name, line.msg)
			} else {
				printWarn(line.name, line.msg)
			}
		}
	} else {
		printWarn("", "skipped (catalog not loaded)")
	}
	fmt.Println()

	// ── Check 4: recipe images ────────────────────────────────────────────────
	fmt.Println("[ Images ]")
	if cat != nil {
		missing := cat.MissingImages(cfg.ImagesDir)
		if len(missing) == 0 {
			printOK("", fmt.Sprintf("all recipe images present in %s", cfg.ImagesDir))
		} else {
			printWarn("", fmt.Sprintf("%d image(s) missing from %s; %s is shown instead", len(missing), cfg.ImagesDir, catalog.DefaultImage))
			shown := missing[:min(len(missing), maxListedImages)]
			for _, m := range shown {
				printMiss("", m)
			}
			if len(missing) > len(shown) {
				printMiss("", fmt.Sprintf("... and %d more", len(missing)-len(shown)))
			}
		}
	} else {
		printWarn("", "skipped (catalog not loaded)")
	}
	fmt.Println()

	// ── Summary ───────────────────────────────────────────────────────────────
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. vavi is ready to use.")
	} else {
		fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

type checkLine struct {
	name string
	ok   bool
	msg  string
}

// checkArtifacts reports whether the cached embeddings and index under
// cfg.ModelDir would be reused for cat. Stale or missing artifacts are
// warnings: they are rebuilt on demand.
func checkArtifacts(cfg *config.Config, cat *catalog.Catalog) []checkLine {
	var out []checkLine
	embDir := filepath.Join(cfg.ModelDir, recommend.EmbeddingsDir)
	space, m, err := embeddings.Load(embDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		out = append(out, checkLine{"embeddings", false, "not built yet (run 'vavi index')"})
	case err != nil:
		out = append(out, checkLine{"embeddings", false, fmt.Sprintf("unreadable, will be retrained: %v", err)})
	case m.CatalogHash != cat.Hash():
		out = append(out, checkLine{"embeddings", false, "trained on a different catalog (run 'vavi index')"})
	case m.Options != recommend.TrainOptions(cfg.Embedding):
		out = append(out, checkLine{"embeddings", false, "trained with different settings (run 'vavi index')"})
	default:
		out = append(out, checkLine{"embeddings", true, fmt.Sprintf("%d ingredients, dim %d, fingerprint %s", m.VocabSize, m.Dim, m.Fingerprint)})
	}

	idxDir := filepath.Join(cfg.ModelDir, recommend.IndexDir)
	idx, err := index.Load(idxDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		out = append(out, checkLine{"index", false, "not built yet (run 'vavi index')"})
	case err != nil:
		out = append(out, checkLine{"index", false, fmt.Sprintf("unreadable, will be rebuilt: %v", err)})
	case idx.Manifest.CatalogHash != cat.Hash() || idx.Validate(cat.Len()) != nil:
		out = append(out, checkLine{"index", false, "built for a different catalog (run 'vavi index')"})
	case space == nil || idx.Manifest.SpaceFingerprint != space.Fingerprint():
		out = append(out, checkLine{"index", false, "built from different embeddings (run 'vavi index')"})
	default:
		out = append(out, checkLine{"index", true, fmt.Sprintf("%d recipes, metric %s", idx.Len(), strings.ToLower(idx.Manifest.Metric))})
	}
	return out
}
