package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/embeddings"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"github.com/vavi-recipes/vavi/internal/recommend"
	"github.com/vavi-recipes/vavi/internal/search/index"
)

var (
	flagIngSimilar string
	flagIngN       int
)

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "List known ingredients, or the ones closest to a given ingredient",
	Long: `Without flags, list every ingredient the recommender knows with how often
it occurs in the catalog. With --similar, show the ingredients whose
embeddings are closest to the given one.

Example:
  vavi ingredients --similar "curry leaves"`,
	Args: cobra.NoArgs,
	RunE: runIngredients,
}

func init() {
	ingredientsCmd.Flags().StringVar(&flagIngSimilar, "similar", "", "Show ingredients closest to this one")
	ingredientsCmd.Flags().IntVar(&flagIngN, "n", 10, "Number of similar ingredients to show")
	rootCmd.AddCommand(ingredientsCmd)
}

func runIngredients(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := interruptContext()
	defer cancel()
	svc, err := recommend.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	space := svc.Space()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if flagIngSimilar == "" {
		tokens := space.Tokens()
		fmt.Fprintf(w, "Ingredients (%d):\n", len(tokens))
		for _, t := range tokens {
			fmt.Fprintf(w, "  %s\t%d\n", ingredient.Display(t), space.Count(t))
		}
		return nil
	}

	tok := ingredient.Normalize(flagIngSimilar)
	similar, ok := similarIngredients(space, tok, flagIngN)
	if !ok {
		printMiss("", fmt.Sprintf("unknown ingredient %q", flagIngSimilar))
		return nil
	}
	fmt.Fprintf(w, "Closest to %s:\n", ingredient.Display(tok))
	for i, s := range similar {
		fmt.Fprintf(w, "  %d.\t[%.3f]\t%s\n", i+1, s.similarity, ingredient.Display(s.token))
	}
	return nil
}

type ingredientScore struct {
	token      ingredient.Token
	similarity float64
}

// similarIngredients returns up to n other tokens ordered by cosine similarity
// to tok, most similar first; ties keep vocabulary order.
func similarIngredients(space *embeddings.Space, tok ingredient.Token, n int) ([]ingredientScore, bool) {
	v, ok := space.VectorOf(tok)
	if !ok {
		return nil, false
	}
	var out []ingredientScore
	for _, t := range space.Tokens() {
		if t == tok {
			continue
		}
		u, _ := space.VectorOf(t)
		sim, err := index.Cosine(v, u)
		if err != nil {
			continue
		}
		out = append(out, ingredientScore{token: t, similarity: sim})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].similarity > out[j].similarity })
	return out[:min(max(n, 0), len(out))], true
}
