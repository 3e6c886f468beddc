package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"github.com/vavi-recipes/vavi/internal/recommend"
)

var (
	flagRecCuisines []string
	flagRecMaxTime  int
	flagRecK        int
	flagRecJSON     bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <ingredients>",
	Short: "Recommend recipes for the ingredients you have",
	Long: `Rank catalog recipes by how close their ingredient profile is to yours.

Ingredients are comma-separated; several arguments are joined as one list.
Filters are applied after ranking, so they only remove recipes from the
top --k matches.

Example:
  vavi recommend "rice, soy sauce, ginger"
  vavi recommend eggs spaghetti --cuisine Italian --max-time 30`,
	Args: cobra.ArbitraryArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringSliceVar(&flagRecCuisines, "cuisine", []string{recommend.AnyCuisine}, "Keep only these cuisines (repeatable, \"Any\" for all)")
	recommendCmd.Flags().IntVar(&flagRecMaxTime, "max-time", 0, "Maximum cooking time in minutes (no limit when unset)")
	recommendCmd.Flags().IntVar(&flagRecK, "k", 0, "Number of neighbors to retrieve before filtering (default from config)")
	recommendCmd.Flags().BoolVar(&flagRecJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if flagRecK > 0 {
		cfg.Recommend.K = flagRecK
	}

	ctx, cancel := interruptContext()
	defer cancel()
	svc, err := recommend.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}

	res := svc.Recommend(joinIngredientArgs(args), flagFilters(cmd, flagRecCuisines, flagRecMaxTime))

	if flagRecJSON {
		b, err := recommendationJSON(res)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	renderRecommendation(os.Stdout, res)
	switch res.Status {
	case recommend.StatusNoIngredients:
		fmt.Printf("\n  Try: vavi recommend %s\n", suggestionLine(svc.SuggestIngredients(3)))
	case recommend.StatusNoMatches:
		renderSamples(os.Stdout, svc.Sample(cfg.Recommend.SampleSize))
	}
	return nil
}

// joinIngredientArgs treats each argument as one or more comma-separated ingredients.
func joinIngredientArgs(args []string) string {
	return strings.Join(args, ",")
}

// recipeView is the JSON shape of one recommended recipe. Similarity is absent
// for sampled recipes.
type recipeView struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Cuisine     string   `json:"cuisine"`
	CookingTime int      `json:"cooking_time"`
	Serves      int      `json:"serves"`
	Image       string   `json:"image"`
	Similarity  *float64 `json:"similarity,omitempty"`
}

type resultView struct {
	RequestID  string       `json:"request_id"`
	Status     string       `json:"status"`
	Fallback   string       `json:"fallback,omitempty"`
	Unresolved []string     `json:"unresolved,omitempty"`
	Error      string       `json:"error,omitempty"`
	Results    []recipeView `json:"results"`
}

func newResultView(res recommend.Result) resultView {
	v := resultView{
		RequestID:  res.RequestID,
		Status:     string(res.Status),
		Fallback:   string(res.Fallback),
		Unresolved: ingredient.Strings(res.Unresolved),
		Results:    make([]recipeView, 0, len(res.Matches)),
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
	}
	for _, m := range res.Matches {
		rv := recipeView{
			Name:        m.Recipe.Name,
			Ingredients: ingredient.Strings(m.Recipe.Ingredients),
			Steps:       m.Recipe.Steps,
			Cuisine:     m.Recipe.Cuisine,
			CookingTime: m.Recipe.CookingTime,
			Serves:      m.Recipe.Serves,
			Image:       m.Recipe.Image,
		}
		if m.Scored {
			s := m.Similarity
			rv.Similarity = &s
		}
		v.Results = append(v.Results, rv)
	}
	return v
}

func recommendationJSON(res recommend.Result) ([]byte, error) {
	b, err := json.MarshalIndent(newResultView(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cannot encode result: %w", err)
	}
	return b, nil
}

func renderRecommendation(w io.Writer, res recommend.Result) {
	if len(res.Unresolved) > 0 {
		names := make([]string, len(res.Unresolved))
		for i, t := range res.Unresolved {
			names[i] = ingredient.Display(t)
		}
		statusLine(w, iconWarn, "", "unknown ingredients ignored: "+strings.Join(names, ", "))
	}

	switch res.Status {
	case recommend.StatusNoIngredients:
		statusLine(w, iconMiss, "", "no ingredients given")
		return
	case recommend.StatusNoMatches:
		statusLine(w, iconMiss, "", "no recipes match your filters; try another cuisine or a longer cooking time")
		return
	case recommend.StatusFallback:
		if res.Fallback == recommend.FallbackVocabularyMiss {
			statusLine(w, iconWarn, "", "none of these ingredients are known; here are some recipes to try instead")
		} else {
			statusLine(w, iconWarn, "", "recommendations are unavailable right now; here are some recipes to try instead")
		}
	}

	fmt.Fprintf(w, "\nResults (%d):\n", len(res.Matches))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, m := range res.Matches {
		score := ""
		if m.Scored {
			score = fmt.Sprintf("[%.3f]", m.Similarity)
		}
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s\t%d min\tserves %d\n",
			i+1, score, m.Recipe.Name, m.Recipe.Cuisine, m.Recipe.CookingTime, m.Recipe.Serves)
	}
	_ = tw.Flush()
}

// renderSamples lists recipes offered in place of an empty filtered ranking.
func renderSamples(w io.Writer, recipes []catalog.Recipe) {
	if len(recipes) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSome recipes to try instead (%d):\n", len(recipes))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range recipes {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t%d min\tserves %d\n", i+1, r.Name, r.Cuisine, r.CookingTime, r.Serves)
	}
	_ = tw.Flush()
}
