package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.vavi with a default config",
	Long: `Initialize vavi's home directory at ~/.vavi/.

Writes vavi.yaml with the default settings and a .env template for
environment overrides. Existing files are left untouched.

With --export-catalog the built-in recipes are written to
~/.vavi/recipes.yaml and catalog_path is pointed at it, so the catalog
can be edited.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var flagExportCatalog bool

func init() {
	initCmd.Flags().BoolVar(&flagExportCatalog, "export-catalog", false, "Copy the built-in catalog to ~/.vavi/recipes.yaml and use it")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Create ~/.vavi/ ────────────────────────────────────────────────────
	vaviDir, err := config.VaviDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(vaviDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", vaviDir, err)
	}
	printOK("", fmt.Sprintf("vavi directory ready: %s", vaviDir))

	// ── 2. Write vavi.yaml if missing ─────────────────────────────────────────
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ──────────────────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("Environment overrides: %s", envPath))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ── 4. Working directories ────────────────────────────────────────────────
	for _, dir := range []string{cfg.ModelDir, cfg.ImagesDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
		printOK("", fmt.Sprintf("Directory ready: %s", dir))
	}

	// ── 5. Optional editable catalog ──────────────────────────────────────────
	if flagExportCatalog {
		if err := exportCatalog(cfg, filepath.Join(vaviDir, "recipes.yaml")); err != nil {
			return err
		}
	}

	fmt.Println("\n✓  vavi init complete. Run 'vavi doctor' to verify, then 'vavi index' to train.")
	return nil
}

// exportCatalog writes the built-in catalog to path (unless it exists) and
// points the saved config at it.
func exportCatalog(cfg *config.Config, path string) error {
	if _, err := os.Stat(path); err == nil {
		printSkip("", fmt.Sprintf("Catalog already exists: %s", path))
	} else if os.IsNotExist(err) {
		if err := os.WriteFile(path, catalog.Builtin(), 0o644); err != nil {
			return fmt.Errorf("cannot write catalog %s: %w", path, err)
		}
		printOK("", fmt.Sprintf("Catalog written: %s", path))
	} else {
		return fmt.Errorf("cannot stat %s: %w", path, err)
	}

	if cfg.CatalogPath == path {
		return nil
	}
	cfg.CatalogPath = path
	if err := config.Save(cfg); err != nil {
		return err
	}
	printOK("", "catalog_path updated in vavi.yaml")
	return nil
}
