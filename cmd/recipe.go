package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"github.com/vavi-recipes/vavi/internal/recommend"
)

var flagRecipeSearch bool

var recipeCmd = &cobra.Command{
	Use:   "recipe <name>",
	Short: "Show a recipe's ingredients and steps",
	Long: `Look a recipe up by its exact name (case-insensitive), or with --search
list the recipes whose names contain every word of the query.

Example:
  vavi recipe "masala dosa"
  vavi recipe --search curry`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecipe,
}

func init() {
	recipeCmd.Flags().BoolVar(&flagRecipeSearch, "search", false, "Search names by substring instead of exact lookup")
	rootCmd.AddCommand(recipeCmd)
}

func runRecipe(_ *cobra.Command, args []string) error {
	cfg, _, err := loadRuntime()
	if err != nil {
		return err
	}
	cat, err := recommend.LoadCatalog(cfg)
	if err != nil {
		return fmt.Errorf("cannot load catalog: %w", err)
	}
	query := strings.Join(args, " ")

	if flagRecipeSearch {
		found := cat.Search(query, 0)
		fmt.Printf("Recipes matching %q (%d found):\n", query, len(found))
		for _, r := range found {
			printBullet(fmt.Sprintf("%s (%s, %d min)", r.Name, r.Cuisine, r.CookingTime))
		}
		return nil
	}

	r, ok := cat.ByName(query)
	if !ok {
		printMiss("", fmt.Sprintf("no recipe named %q", query))
		if similar := cat.Search(query, 5); len(similar) > 0 {
			fmt.Println("\n  Did you mean:")
			for _, s := range similar {
				fmt.Printf("    %s\n", s.Name)
			}
		}
		return nil
	}
	renderRecipe(os.Stdout, r, cfg.ImagesDir)
	return nil
}

// imageFor returns the image to show for r, substituting the default when the
// referenced file does not exist in imagesDir.
func imageFor(r catalog.Recipe, imagesDir string) string {
	if imagesDir == "" {
		return r.Image
	}
	if _, err := os.Stat(filepath.Join(imagesDir, r.Image)); err != nil {
		return catalog.DefaultImage
	}
	return r.Image
}

func renderRecipe(w io.Writer, r catalog.Recipe, imagesDir string) {
	fmt.Fprintf(w, "\n=== %s ===\n", r.Name)
	fmt.Fprintf(w, "Cuisine:      %s\n", r.Cuisine)
	fmt.Fprintf(w, "Cooking time: %d min\n", r.CookingTime)
	fmt.Fprintf(w, "Serves:       %d\n", r.Serves)
	fmt.Fprintf(w, "Image:        %s\n", imageFor(r, imagesDir))

	fmt.Fprintln(w, "\n● Ingredients")
	for _, t := range r.Ingredients {
		fmt.Fprintf(w, "  - %s\n", ingredient.Display(t))
	}
	fmt.Fprintln(w, "\n● Steps")
	for i, s := range r.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}
