package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"github.com/vavi-recipes/vavi/internal/recommend"
)

var (
	flagListCuisines    []string
	flagListMaxTime     int
	flagListIngredients []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog recipes",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var cuisinesCmd = &cobra.Command{
	Use:   "cuisines",
	Short: "List the cuisines in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runCuisines,
}

func init() {
	listCmd.Flags().StringSliceVar(&flagListCuisines, "cuisine", []string{recommend.AnyCuisine}, "Keep only these cuisines (repeatable, \"Any\" for all)")
	listCmd.Flags().IntVar(&flagListMaxTime, "max-time", 0, "Maximum cooking time in minutes (no limit when unset)")
	listCmd.Flags().StringSliceVar(&flagListIngredients, "ingredient", nil, "Keep only recipes using any of these ingredients (repeatable)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cuisinesCmd)
}

func loadCatalogOnly() (*catalog.Catalog, error) {
	cfg, _, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	cat, err := recommend.LoadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}
	return cat, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalogOnly()
	if err != nil {
		return err
	}
	recipes := cat.All()
	if len(flagListIngredients) > 0 {
		recipes = cat.WithAnyIngredient(ingredient.Split(strings.Join(flagListIngredients, ",")))
	}
	recipes = filterRecipes(recipes, flagFilters(cmd, flagListCuisines, flagListMaxTime))
	renderRecipeTable(os.Stdout, recipes)
	return nil
}

// flagFilters builds filters from the --cuisine and --max-time values of cmd.
// Filters themselves are strict, so an unset --max-time becomes NoTimeLimit
// here; an explicit --max-time 0 keeps nothing.
func flagFilters(cmd *cobra.Command, cuisines []string, maxTime int) recommend.Filters {
	f := recommend.Filters{Cuisines: cuisines, MaxCookingTime: maxTime}
	if !cmd.Flags().Changed("max-time") {
		f.MaxCookingTime = recommend.NoTimeLimit
	}
	return f
}

func filterRecipes(recipes []catalog.Recipe, f recommend.Filters) []catalog.Recipe {
	var out []catalog.Recipe
	for _, r := range recipes {
		if f.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}

func renderRecipeTable(w io.Writer, recipes []catalog.Recipe) {
	fmt.Fprintf(w, "Recipes (%d):\n", len(recipes))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range recipes {
		fmt.Fprintf(tw, "  %s\t%s\t%d min\tserves %d\n", r.Name, r.Cuisine, r.CookingTime, r.Serves)
	}
	_ = tw.Flush()
}

func runCuisines(_ *cobra.Command, _ []string) error {
	cat, err := loadCatalogOnly()
	if err != nil {
		return err
	}
	counts := cuisineCounts(cat.All())
	for _, c := range cat.Cuisines() {
		printInfo("", fmt.Sprintf("%s (%d)", c, counts[c]))
	}
	return nil
}

func cuisineCounts(recipes []catalog.Recipe) map[string]int {
	out := make(map[string]int)
	for _, r := range recipes {
		out[r.Cuisine]++
	}
	return out
}
